package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricedLine is one order line with its tax back-calculated from the
// tax-inclusive unit price.
type PricedLine struct {
	CartLine
	BasePrice decimal.Decimal // per unit, tax excluded
	LineBase  decimal.Decimal // BasePrice × Quantity
	LineTax   decimal.Decimal // total tax across the line
	CGST      decimal.Decimal
	SGST      decimal.Decimal
	IGST      decimal.Decimal
	LineTotal decimal.Decimal // inclusive price × Quantity
}

// PricedOrder carries the complete computed pricing for an order. Rounding
// to 2 decimal places happens only on Total; intermediate values keep full
// precision to avoid cumulative drift.
type PricedOrder struct {
	Lines          []PricedLine
	GSTType        GSTType
	Subtotal       decimal.Decimal // sum of line base amounts
	Discount       decimal.Decimal
	CouponDiscount decimal.Decimal
	Shipping       decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
	TotalTax       decimal.Decimal
	Total          decimal.Decimal
}

// normalizeRegion removes the case/whitespace noise GST state codes arrive with.
func normalizeRegion(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// PriceOrder prices a basket. Seller and buyer region codes decide the GST
// type: equal codes split the tax into CGST+SGST halves, different codes tag
// the whole amount IGST. Unit prices are treated as tax-inclusive and the
// base price is back-calculated per line. A zero GST rate yields zero tax
// with base price equal to the inclusive price.
func PriceOrder(lines []CartLine, sellerRegion, buyerRegion string, discount, couponDiscount, shipping decimal.Decimal) PricedOrder {
	gstType := GSTSingle
	if normalizeRegion(sellerRegion) == normalizeRegion(buyerRegion) {
		gstType = GSTSplit
	}

	po := PricedOrder{
		GSTType:        gstType,
		Discount:       discount,
		CouponDiscount: couponDiscount,
		Shipping:       shipping,
	}

	two := decimal.NewFromInt(2)
	for _, l := range lines {
		qty := decimal.NewFromInt(int64(l.Quantity))

		base := l.UnitPrice
		if l.GSTRate.IsPositive() {
			base = l.UnitPrice.Div(decimal.NewFromInt(1).Add(l.GSTRate.Div(hundred)))
		}
		unitTax := l.UnitPrice.Sub(base)

		pl := PricedLine{
			CartLine:  l,
			BasePrice: base,
			LineBase:  base.Mul(qty),
			LineTax:   unitTax.Mul(qty),
			LineTotal: l.UnitPrice.Mul(qty),
		}
		if gstType == GSTSplit {
			half := pl.LineTax.Div(two)
			pl.CGST = half
			pl.SGST = half
		} else {
			pl.IGST = pl.LineTax
		}

		po.Lines = append(po.Lines, pl)
		po.Subtotal = po.Subtotal.Add(pl.LineBase)
		po.CGST = po.CGST.Add(pl.CGST)
		po.SGST = po.SGST.Add(pl.SGST)
		po.IGST = po.IGST.Add(pl.IGST)
		po.TotalTax = po.TotalTax.Add(pl.LineTax)
	}

	po.Total = po.Subtotal.
		Sub(po.Discount).
		Sub(po.CouponDiscount).
		Add(po.Shipping).
		Add(po.TotalTax).
		Round(2)

	return po
}
