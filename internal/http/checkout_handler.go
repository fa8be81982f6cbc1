package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
)

type CheckoutHandler struct {
	timeout time.Duration
}

func NewCheckoutHandler(timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{timeout: timeout}
}

type CheckoutResponseDTO struct {
	checkout.Snapshot
	Cart CartResponseDTO `json:"cart"`
}

func (h *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, status int) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, status, CheckoutResponseDTO{
		Snapshot: sess.Checkout.Snapshot(),
		Cart:     cartResponse(sess),
	})
}

// GET /api/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK)
}

// POST /api/checkout
func (h *CheckoutHandler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if _, err := sess.Checkout.Begin(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)
}

// PUT /api/checkout/address
func (h *CheckoutHandler) SaveAddress(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var addr domain.ShippingAddress
	if !decodeJSON(w, r, &addr) {
		return
	}
	if _, err := sess.Checkout.SaveAddress(r.Context(), addr); err != nil {
		handleError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)
}

// POST /api/checkout/payment
func (h *CheckoutHandler) OpenPayment(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if _, err := sess.Checkout.OpenPayment(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)
}

// POST /api/checkout/confirm
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	if _, err := sess.Checkout.Confirm(ctx); err != nil {
		handleError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated)
}
