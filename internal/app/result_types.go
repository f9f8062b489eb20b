package app

import (
	"commerce-backoffice/internal/core"
)

// OrderResult wraps an order for presentation. Duplicate reports that this
// submission resolved to a previously committed order.
type OrderResult struct {
	Order     *core.Order `json:"order"`
	Duplicate bool        `json:"duplicate,omitempty"`
}

type OrderListResult struct {
	Orders []core.Order `json:"orders"`
}

type PaymentIntentResult struct {
	Intent *core.PaymentIntent `json:"intent"`
}

type StockResult struct {
	Items []core.InventoryItem `json:"items"`
}

type AdjustmentResult struct {
	Reconciliation *core.Reconciliation `json:"reconciliation"`
}

type AdjustmentListResult struct {
	Adjustments []core.StockAdjustment `json:"adjustments"`
}

type LedgerResult struct {
	Entries []core.LedgerEntry `json:"entries"`
}
