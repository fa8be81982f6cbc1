package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	timeout time.Duration
}

func NewOrdersHandler(timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{timeout: timeout}
}

// GET /api/orders/mine
func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	list, err := sess.Orders.Mine(ctx, sess.User())
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// GET /api/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	sess := sessionFromContext(r.Context())
	order, err := sess.Orders.Get(ctx, sess.User(), orderID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// PUT /api/orders/{order_id}/pay
//
// The body is optional. Without one a completed mobile payment is recorded.
func (h *OrdersHandler) PayOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	sess := sessionFromContext(r.Context())
	user := sess.User()

	var result domain.PaymentResult
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "unreadable body")
			return
		}
		if len(body) > 0 && !decodeBytes(w, body, &result) {
			return
		}
	}
	if result.ID == "" {
		now := time.Now().UTC()
		result.ID = fmt.Sprintf("MOBILE_%d", now.UnixMilli())
		result.Status = "COMPLETED"
		result.UpdateTime = now.Format(time.RFC3339)
		if user != nil {
			result.Phone = user.Phone
		}
	}

	order, err := sess.Orders.Pay(ctx, user, orderID, result)
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
