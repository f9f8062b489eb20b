package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"commerce-backoffice/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps core sentinel errors to HTTP semantics. Validation
// failures are 422, a submission already in flight is 409, everything
// unrecognized is 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyCart):
		writeError(w, r, err.Error(), "EMPTY_CART", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrIncompleteAddress):
		writeError(w, r, err.Error(), "INCOMPLETE_ADDRESS", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrInsufficientStock):
		writeError(w, r, err.Error(), "INSUFFICIENT_STOCK", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrChannelUnavailable):
		writeError(w, r, err.Error(), "CHANNEL_UNAVAILABLE", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrCouponInvalid),
		errors.Is(err, core.ErrCouponExpired),
		errors.Is(err, core.ErrCouponBelowMinimum),
		errors.Is(err, core.ErrCouponExhausted):
		writeError(w, r, err.Error(), "COUPON_REJECTED", http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrAlreadyProcessing):
		writeError(w, r, err.Error(), "ALREADY_PROCESSING", http.StatusConflict)
	case errors.Is(err, core.ErrPaymentNotConfirmed):
		writeError(w, r, err.Error(), "PAYMENT_NOT_CONFIRMED", http.StatusPaymentRequired)
	default:
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
