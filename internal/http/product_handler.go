package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Catalog is the read side of the product catalog.
type Catalog interface {
	List(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	TopRated(ctx context.Context) ([]domain.Product, error)
	Filters(ctx context.Context) (*domain.FilterOptions, error)
	Home(ctx context.Context, refine domain.ProductQuery) (*catalog.HomePage, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(c Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{catalog: c, timeout: timeout}
}

// GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	page, err := h.catalog.List(ctx, q)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// GET /api/products/home
func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q, err := parseProductQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	home, err := h.catalog.Home(ctx, q)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, home)
}

// GET /api/products/top
func (h *ProductHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.TopRated(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/filters
func (h *ProductHandler) Filters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	opts, err := h.catalog.Filters(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, opts)
}

// GET /api/products/{product_id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.Product(ctx, productID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// parseProductQuery accepts the same parameter names the backend does.
// Unparsable numbers are ignored; a flag that is not a boolean is an error.
func parseProductQuery(v url.Values) (domain.ProductQuery, error) {
	q := domain.ProductQuery{
		Keyword:   v.Get("keyword"),
		Category:  v.Get("category"),
		Brand:     v.Get("brand"),
		Size:      v.Get("size"),
		Color:     v.Get("color"),
		SortBy:    v.Get("sortBy"),
		SortOrder: v.Get("sortOrder"),
	}
	if f, err := strconv.ParseFloat(v.Get("minPrice"), 64); err == nil && f > 0 {
		q.MinPrice = f
	}
	if f, err := strconv.ParseFloat(v.Get("maxPrice"), 64); err == nil && f > 0 {
		q.MaxPrice = f
	}
	var err error
	if q.InStock, err = parseFlag(v, "inStock"); err != nil {
		return q, err
	}
	if q.Featured, err = parseFlag(v, "featured"); err != nil {
		return q, err
	}
	if n, err := strconv.Atoi(v.Get("pageNumber")); err == nil && n > 0 {
		q.Page = n
	}
	if n, err := strconv.Atoi(v.Get("pageSize")); err == nil && n > 0 {
		q.PageSize = n
	}
	return q, nil
}

func parseFlag(v url.Values, name string) (bool, error) {
	raw := v.Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false, got %q", name, raw)
	}
	return b, nil
}
