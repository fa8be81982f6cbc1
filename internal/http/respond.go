package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/storefront"
	"github.com/fjod/storefront/pkg/circuitbreaker"
)

const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func decodeBytes(w http.ResponseWriter, body []byte, dst any) bool {
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleError converts domain and backend errors to HTTP answers.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr   *domain.ValidationError
		apiErr *backend.APIError
	)

	switch {
	case errors.As(err, &vErr):
		respondErrorDetails(w, http.StatusBadRequest, "validation_failed", "required fields are missing", strings.Join(vErr.Fields, ","))
	case errors.Is(err, checkout.ErrNotAuthenticated), errors.Is(err, orders.ErrNotAuthenticated),
		errors.Is(err, backend.ErrUnauthorized):
		w.Header().Set("Location", checkout.LoginRedirect)
		respondErrorDetails(w, http.StatusUnauthorized, "login_required", err.Error(), checkout.LoginRedirect)
	case checkout.IsValidation(err),
		errors.Is(err, cart.ErrQuantityOutOfRange),
		errors.Is(err, cart.ErrInvalidLine):
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, storefront.ErrInvalidSession):
		respondError(w, http.StatusBadRequest, "invalid_session", err.Error())
	case errors.Is(err, auth.ErrInvalidMobile), errors.Is(err, auth.ErrInvalidCode):
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, auth.ErrChallengeNotFound):
		respondError(w, http.StatusNotFound, "code_not_requested", err.Error())
	case errors.Is(err, auth.ErrChallengeExpired):
		respondError(w, http.StatusGone, "code_expired", err.Error())
	case errors.Is(err, auth.ErrCodeMismatch):
		respondError(w, http.StatusUnauthorized, "code_mismatch", err.Error())
	case errors.Is(err, auth.ErrTooManyAttempts), errors.Is(err, auth.ErrResendTooSoon):
		respondError(w, http.StatusTooManyRequests, "rate_limit_exceeded", err.Error())
	case errors.Is(err, cart.ErrLineNotFound), errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, circuitbreaker.ErrOpen):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "backend is unavailable, try again later")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "backend did not answer in time")
	case errors.Is(err, backend.ErrForbidden):
		respondError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, backend.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &apiErr):
		respondError(w, http.StatusBadGateway, "backend_error", apiErr.Message)
	case errors.Is(err, checkout.ErrSubmissionFailed):
		respondError(w, http.StatusBadGateway, "submission_failed", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
