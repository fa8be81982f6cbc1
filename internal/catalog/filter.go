package catalog

import (
	"slices"
	"sort"
	"strings"

	"github.com/fjod/storefront/internal/domain"
)

// Refine applies the listing parameters of q to an already fetched product
// set. Paging fields are ignored. The input slice is not modified.
func Refine(products []domain.Product, q domain.ProductQuery) []domain.Product {
	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if keyword != "" && !matchesKeyword(p, keyword) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Brand != "" && !strings.EqualFold(p.Brand, q.Brand) {
			continue
		}
		if q.Size != "" && !slices.Contains(p.Sizes, q.Size) {
			continue
		}
		if q.Color != "" && !containsFold(p.Colors, q.Color) {
			continue
		}
		if q.MinPrice > 0 && p.Price < q.MinPrice {
			continue
		}
		if q.MaxPrice > 0 && p.Price > q.MaxPrice {
			continue
		}
		if q.InStock && !p.InStock() {
			continue
		}
		if q.Featured && !p.Featured {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, q.SortBy, q.SortOrder)
	return out
}

func matchesKeyword(p domain.Product, keyword string) bool {
	return strings.Contains(strings.ToLower(p.Name), keyword) ||
		strings.Contains(strings.ToLower(p.Brand), keyword) ||
		strings.Contains(strings.ToLower(p.Description), keyword)
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func sortProducts(ps []domain.Product, by, order string) {
	var less func(a, b domain.Product) bool
	switch by {
	case "price":
		less = func(a, b domain.Product) bool { return a.Price < b.Price }
	case "rating":
		less = func(a, b domain.Product) bool { return a.Rating < b.Rating }
	case "name":
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "createdAt":
		less = func(a, b domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return
	}
	desc := order == "desc"
	sort.SliceStable(ps, func(i, j int) bool {
		if desc {
			return less(ps[j], ps[i])
		}
		return less(ps[i], ps[j])
	})
}
