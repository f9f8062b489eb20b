package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidateCoupon checks a coupon against the basket subtotal at the given
// instant and returns the discount it grants. Percentage discounts are capped
// by MaxDiscount when one is set; flat discounts never exceed the subtotal.
func ValidateCoupon(c Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if !c.IsActive {
		return decimal.Zero, ErrCouponInvalid
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidTo) {
		return decimal.Zero, ErrCouponExpired
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return decimal.Zero, ErrCouponExhausted
	}
	if subtotal.LessThan(c.MinSubtotal) {
		return decimal.Zero, ErrCouponBelowMinimum
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case "percentage":
		discount = subtotal.Mul(c.DiscountValue).Div(hundred)
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case "flat":
		discount = c.DiscountValue
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	default:
		return decimal.Zero, ErrCouponInvalid
	}

	return discount.Round(2), nil
}
