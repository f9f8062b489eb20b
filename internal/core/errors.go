package core

import "errors"

// Validation failures are reported before any write and are recoverable by
// the caller correcting input.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrIncompleteAddress  = errors.New("delivery address is missing or incomplete")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrChannelUnavailable = errors.New("payment channel unavailable for product")
	ErrCouponInvalid      = errors.New("coupon is invalid or inactive")
	ErrCouponExpired      = errors.New("coupon is outside its validity window")
	ErrCouponBelowMinimum = errors.New("cart subtotal below coupon minimum")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
)

// Conflict failures: the submission is a duplicate of one in flight or
// recently committed. Callers should retry later or use the returned order.
var ErrAlreadyProcessing = errors.New("an order for this customer is already being processed")

// ErrPaymentNotConfirmed is returned when a deferred-capture commit is
// attempted against a payment intent the gateway has not confirmed.
var ErrPaymentNotConfirmed = errors.New("payment has not been confirmed by the gateway")
