package app

// POSLine is one scanned line on the terminal.
type POSLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type POSCheckoutRequest struct {
	CustomerKey    string    `json:"customer_key"`
	Lines          []POSLine `json:"lines"`
	PaymentMethod  string    `json:"payment_method"`
	Discount       string    `json:"discount,omitempty"` // decimal string, tax-inclusive
	Operator       string    `json:"operator"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
}

type OnlineCheckoutRequest struct {
	CustomerKey    string `json:"customer_key"`
	PaymentMethod  string `json:"payment_method"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type AdjustStockRequest struct {
	InventoryItemID int    `json:"inventory_item_id"`
	Delta           int    `json:"delta"`
	Method          string `json:"method"` // manual_adjustment or purchase_receipt
	Reason          string `json:"reason"`
	Actor           string `json:"actor"`
}
