package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus is derived from quantity and the owning record's threshold,
// never set directly by callers.
type StockStatus string

const (
	StatusInStock    StockStatus = "in_stock"
	StatusLowStock   StockStatus = "low_stock"
	StatusOutOfStock StockStatus = "out_of_stock"
)

// statusFor derives the stock status for a quantity against a low-stock threshold.
func statusFor(quantity, threshold int) StockStatus {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= threshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// InventoryItem is the canonical stock record. Quantity is mutated only
// through StockService signed-delta operations.
type InventoryItem struct {
	ID                int             `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Unit              string          `json:"unit"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
	GSTRate           decimal.Decimal `json:"gst_rate"`
	Quantity          int             `json:"quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	Status            StockStatus     `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AdjustmentMethod tags the business reason for a stock mutation.
type AdjustmentMethod string

const (
	MethodManualAdjustment AdjustmentMethod = "manual_adjustment"
	MethodPurchaseReceipt  AdjustmentMethod = "purchase_receipt"
	MethodSalesOrder       AdjustmentMethod = "sales_order"
	MethodSalesReturn      AdjustmentMethod = "sales_return"
)

// StockAdjustment is the immutable audit record written once per inventory
// mutation. Delta is the as-applied delta: when a decrement is clamped at
// zero, Delta reflects what actually happened, not what was requested.
type StockAdjustment struct {
	ID               int              `json:"id"`
	InventoryItemID  int              `json:"inventory_item_id"`
	PreviousQuantity int              `json:"previous_quantity"`
	NewQuantity      int              `json:"new_quantity"`
	Delta            int              `json:"delta"`
	Method           AdjustmentMethod `json:"method"`
	Reason           string           `json:"reason"`
	Actor            string           `json:"actor"`
	OrderID          *int             `json:"order_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Reconciliation reports the outcome of one ApplyDelta call.
type Reconciliation struct {
	InventoryItemID  int         `json:"inventory_item_id"`
	PreviousQuantity int         `json:"previous_quantity"`
	NewQuantity      int         `json:"new_quantity"`
	AppliedDelta     int         `json:"applied_delta"`
	Status           StockStatus `json:"status"`
	Clamped          bool        `json:"clamped"` // requested delta would have gone negative
}

// MovementContext carries the audit fields for a stock mutation.
type MovementContext struct {
	Method  AdjustmentMethod
	Reason  string
	Actor   string
	OrderID *int
}

// PosProduct is the flat POS-channel mirror of an inventory item.
type PosProduct struct {
	ID              int             `json:"id"`
	InventoryItemID int             `json:"inventory_item_id"`
	Name            string          `json:"name"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	Quantity        int             `json:"quantity"`
	Status          StockStatus     `json:"status"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductVariant is one purchasable variant of an online product. Its
// stock_quantity/stock_status fields mirror the backing inventory item but
// are recomputed with the variant's own low-stock threshold.
type ProductVariant struct {
	ID                int             `json:"id"`
	ProductID         int             `json:"product_id"`
	InventoryItemID   *int            `json:"inventory_item_id,omitempty"`
	SKU               string          `json:"sku"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	StockQuantity     int             `json:"stock_quantity"`
	StockStatus       StockStatus     `json:"stock_status"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

// Product is an online catalog product with its channel availability flags.
type Product struct {
	ID            int    `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	CODEnabled    bool   `json:"cod_enabled"`
	OnlineEnabled bool   `json:"online_enabled"`
}
