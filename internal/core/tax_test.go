package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-backoffice/internal/core"
)

func line(sku string, qty int, inclusive string, rate string) core.CartLine {
	return core.CartLine{
		SKU:       sku,
		Name:      sku,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(inclusive),
		GSTRate:   decimal.RequireFromString(rate),
	}
}

func TestPriceOrder_BackCalculatesBaseFromInclusivePrice(t *testing.T) {
	// 118.00 inclusive at 18% → 100.00 base, 18.00 tax.
	priced := core.PriceOrder(
		[]core.CartLine{line("SKU1", 1, "118.00", "18")},
		"KA", "KA",
		decimal.Zero, decimal.Zero, decimal.Zero,
	)

	require.Len(t, priced.Lines, 1)
	l := priced.Lines[0]
	assert.True(t, l.BasePrice.Round(2).Equal(decimal.RequireFromString("100.00")),
		"base price = %s", l.BasePrice)
	assert.True(t, l.LineTax.Round(2).Equal(decimal.RequireFromString("18.00")),
		"line tax = %s", l.LineTax)
	assert.True(t, priced.Total.Equal(decimal.RequireFromString("118.00")),
		"total = %s", priced.Total)
}

func TestPriceOrder_SameStateSplitsTaxIntoHalves(t *testing.T) {
	priced := core.PriceOrder(
		[]core.CartLine{line("SKU1", 2, "118.00", "18")},
		"KA", "ka ",
		decimal.Zero, decimal.Zero, decimal.Zero,
	)

	assert.Equal(t, core.GSTSplit, priced.GSTType)
	assert.True(t, priced.CGST.Round(2).Equal(decimal.RequireFromString("18.00")),
		"cgst = %s", priced.CGST)
	assert.True(t, priced.SGST.Round(2).Equal(decimal.RequireFromString("18.00")),
		"sgst = %s", priced.SGST)
	assert.True(t, priced.IGST.IsZero(), "igst = %s", priced.IGST)
	assert.True(t, priced.CGST.Add(priced.SGST).Equal(priced.TotalTax),
		"halves must recombine to the full tax")
}

func TestPriceOrder_CrossStateUsesIGST(t *testing.T) {
	priced := core.PriceOrder(
		[]core.CartLine{line("SKU1", 1, "112.00", "12")},
		"KA", "MH",
		decimal.Zero, decimal.Zero, decimal.Zero,
	)

	assert.Equal(t, core.GSTSingle, priced.GSTType)
	assert.True(t, priced.CGST.IsZero())
	assert.True(t, priced.SGST.IsZero())
	assert.True(t, priced.IGST.Round(2).Equal(decimal.RequireFromString("12.00")),
		"igst = %s", priced.IGST)
}

func TestPriceOrder_ZeroRateLineCarriesNoTax(t *testing.T) {
	priced := core.PriceOrder(
		[]core.CartLine{line("BOOK", 3, "250.00", "0")},
		"KA", "KA",
		decimal.Zero, decimal.Zero, decimal.Zero,
	)

	l := priced.Lines[0]
	assert.True(t, l.BasePrice.Equal(l.UnitPrice), "zero-rated base equals inclusive price")
	assert.True(t, priced.TotalTax.IsZero())
	assert.True(t, priced.Total.Equal(decimal.RequireFromString("750.00")))
}

func TestPriceOrder_TotalAppliesDiscountsAndShipping(t *testing.T) {
	priced := core.PriceOrder(
		[]core.CartLine{line("SKU1", 1, "118.00", "18")},
		"KA", "MH",
		decimal.RequireFromString("10"),  // manual discount
		decimal.RequireFromString("8"),   // coupon
		decimal.RequireFromString("40"),  // shipping
	)

	// 118 − 10 − 8 + 40 = 140
	assert.True(t, priced.Total.Equal(decimal.RequireFromString("140.00")),
		"total = %s", priced.Total)
}

func TestPriceOrder_RoundingOnlyAtTheEnd(t *testing.T) {
	// 99.99 at 5%: base 95.2285714..., tax 4.7614285... Per-line intermediates
	// stay unrounded; only the order total is rounded to 2 places.
	priced := core.PriceOrder(
		[]core.CartLine{line("SKU1", 7, "99.99", "5")},
		"KA", "KA",
		decimal.Zero, decimal.Zero, decimal.Zero,
	)

	expected := decimal.RequireFromString("99.99").Mul(decimal.NewFromInt(7)).Round(2)
	assert.True(t, priced.Total.Equal(expected), "total = %s, want %s", priced.Total, expected)

	l := priced.Lines[0]
	recombined := l.BasePrice.Add(l.UnitPrice.Sub(l.BasePrice))
	assert.True(t, recombined.Equal(l.UnitPrice), "base + tax must equal the inclusive price exactly")
}

func TestPriceOrder_MixedRatesAccumulatePerLine(t *testing.T) {
	priced := core.PriceOrder(
		[]core.CartLine{
			line("A", 1, "118.00", "18"),
			line("B", 1, "105.00", "5"),
		},
		"KA", "KA",
		decimal.Zero, decimal.Zero, decimal.Zero,
	)

	assert.True(t, priced.TotalTax.Round(2).Equal(decimal.RequireFromString("23.00")),
		"tax = %s", priced.TotalTax)
	assert.True(t, priced.Subtotal.Round(2).Equal(decimal.RequireFromString("200.00")),
		"subtotal = %s", priced.Subtotal)
}
