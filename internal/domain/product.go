package domain

import (
	"net/url"
	"strconv"
	"time"
)

type Product struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	Images       []string  `json:"images,omitempty"`
	Price        float64   `json:"price"`
	Sizes        []string  `json:"sizes,omitempty"`
	Colors       []string  `json:"colors,omitempty"`
	CountInStock int       `json:"countInStock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Product) InStock() bool {
	return p.CountInStock > 0
}

// ProductQuery mirrors the listing parameters the backend accepts.
type ProductQuery struct {
	Keyword   string
	Category  string
	Brand     string
	Size      string
	Color     string
	MinPrice  float64
	MaxPrice  float64
	InStock   bool
	Featured  bool
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// Values encodes the query; zero fields are omitted.
func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("keyword", q.Keyword)
	set("category", q.Category)
	set("brand", q.Brand)
	set("size", q.Size)
	set("color", q.Color)
	set("sortBy", q.SortBy)
	set("sortOrder", q.SortOrder)
	if q.MinPrice > 0 {
		v.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		v.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.InStock {
		v.Set("inStock", "true")
	}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.Page > 0 {
		v.Set("pageNumber", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

// CacheKey is stable for equal queries.
func (q ProductQuery) CacheKey() string {
	return q.Values().Encode()
}

type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
	Total    int       `json:"total"`
}

type FilterOptions struct {
	Brands     []string `json:"brands"`
	Colors     []string `json:"colors"`
	Categories []string `json:"categories"`
	Sizes      []string `json:"sizes"`
}
