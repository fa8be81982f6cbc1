package http

import (
	"net/http"

	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler {
	return &CartHandler{}
}

type UpdateQuantityRequestDTO struct {
	Qty int `json:"qty"`
}

type PaymentMethodRequestDTO struct {
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
}

type CartResponseDTO struct {
	Items           []domain.LineItem       `json:"cartItems"`
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod   domain.PaymentMethod    `json:"paymentMethod"`
	ItemCount       int                     `json:"itemCount"`
	domain.Prices
}

func cartResponse(sess *storefront.Session) CartResponseDTO {
	state, prices := sess.Cart.Snapshot()
	resp := CartResponseDTO{
		Items:         state.Items,
		PaymentMethod: state.PaymentMethod,
		ItemCount:     state.ItemCount(),
		Prices:        prices,
	}
	if !state.ShippingAddress.IsZero() {
		addr := state.ShippingAddress
		resp.ShippingAddress = &addr
	}
	return resp
}

// lineKey reads the line identity from the path and the size/color query.
func lineKey(r *http.Request) domain.LineKey {
	q := r.URL.Query()
	return domain.LineKey{
		ProductID: chi.URLParam(r, "product_id"),
		Size:      q.Get("size"),
		Color:     q.Get("color"),
	}
}

// cartLocked answers 409 while an order is being submitted from the cart.
func cartLocked(w http.ResponseWriter, r *http.Request, sess *storefront.Session) bool {
	if sess.Checkout.Status() != domain.CheckoutStatusSubmitting {
		return false
	}
	handleError(w, r, checkout.ErrSubmissionInFlight)
	return true
}

// GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, cartResponse(sessionFromContext(r.Context())))
}

// POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if cartLocked(w, r, sess) {
		return
	}
	var item domain.LineItem
	if !decodeJSON(w, r, &item) {
		return
	}
	if err := sess.Cart.Add(r.Context(), item); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(sess))
}

// PUT /api/cart/items/{product_id}?size=&color=
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if cartLocked(w, r, sess) {
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := sess.Cart.UpdateQuantity(r.Context(), lineKey(r), req.Qty); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(sess))
}

// DELETE /api/cart/items/{product_id}?size=&color=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if cartLocked(w, r, sess) {
		return
	}
	if err := sess.Cart.Remove(r.Context(), lineKey(r)); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(sess))
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if cartLocked(w, r, sess) {
		return
	}
	if err := sess.Cart.Clear(r.Context()); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(sess))
}

// PUT /api/cart/payment-method
func (h *CartHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	if cartLocked(w, r, sess) {
		return
	}
	var req PaymentMethodRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := sess.Cart.SetPaymentMethod(r.Context(), req.PaymentMethod); err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(sess))
}
