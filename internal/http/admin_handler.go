package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

// OrderLister lists every order; the backend only answers admins.
type OrderLister interface {
	ListOrders(ctx context.Context, token string) ([]domain.Order, error)
}

// AdminHandler serves product maintenance and sales analytics. Without a
// backend (nil products and orders) analytics cover the session's mock
// orders and product maintenance is unavailable.
type AdminHandler struct {
	products catalog.ProductAdmin
	orders   OrderLister
	timeout  time.Duration
	now      func() time.Time
}

func NewAdminHandler(products catalog.ProductAdmin, lister OrderLister, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		products: products,
		orders:   lister,
		timeout:  timeout,
		now:      time.Now,
	}
}

// POST /api/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireProducts(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	if p.Name == "" || p.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_argument", "name is required and price must not be negative")
		return
	}

	created, err := h.products.CreateProduct(ctx, currentUser(r.Context()).Token, p)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// PUT /api/admin/products/{product_id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireProducts(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Product
	if !decodeJSON(w, r, &p) {
		return
	}

	updated, err := h.products.UpdateProduct(ctx, currentUser(r.Context()).Token, chi.URLParam(r, "product_id"), p)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// DELETE /api/admin/products/{product_id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireProducts(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.products.DeleteProduct(ctx, currentUser(r.Context()).Token, chi.URLParam(r, "product_id")); err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GET /api/admin/analytics?days=30
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	days := orders.DefaultAnalyticsWindow
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 365 {
			respondError(w, http.StatusBadRequest, "invalid_days", "days must be between 1 and 365")
			return
		}
		days = n
	}

	var (
		all []domain.Order
		err error
	)
	if h.orders != nil {
		all, err = h.orders.ListOrders(ctx, currentUser(r.Context()).Token)
	} else {
		all, err = sessionFromContext(r.Context()).Mocks.List(ctx)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, orders.Summarize(all, days, h.now()))
}

func (h *AdminHandler) requireProducts(w http.ResponseWriter) bool {
	if h.products == nil {
		respondError(w, http.StatusServiceUnavailable, "backend_not_configured", "product maintenance needs a backend")
		return false
	}
	return true
}
