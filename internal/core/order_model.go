package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Channel identifies which sales surface captured an order.
type Channel string

const (
	ChannelPOS    Channel = "pos"
	ChannelOnline Channel = "online"
)

// GSTType selects the tax split. Same-state orders split tax into equal CGST
// and SGST halves; cross-state orders carry the whole amount as IGST.
type GSTType string

const (
	GSTSplit  GSTType = "cgst_sgst"
	GSTSingle GSTType = "igst"
)

// Order is immutable after creation except for status/payment transitions.
// Financial-period tags are fixed at creation time.
type Order struct {
	ID               int             `json:"id"`
	OrderNumber      string          `json:"order_number"`
	InvoiceNumber    *string         `json:"invoice_number,omitempty"`
	Channel          Channel         `json:"channel"`
	CustomerID       int             `json:"customer_id"`
	Status           string          `json:"status"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	CouponDiscount   decimal.Decimal `json:"coupon_discount"`
	Shipping         decimal.Decimal `json:"shipping"`
	CGST             decimal.Decimal `json:"cgst"`
	SGST             decimal.Decimal `json:"sgst"`
	IGST             decimal.Decimal `json:"igst"`
	Total            decimal.Decimal `json:"total"`
	GSTType          GSTType         `json:"gst_type"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	ShipAddress      string          `json:"ship_address,omitempty"`
	FinancialYear    string          `json:"financial_year"`
	AccountingPeriod string          `json:"accounting_period"`
	Items            []OrderItem     `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderItem denormalizes the catalog entry at order time: sku, name and the
// full per-line tax breakdown are frozen onto the row.
type OrderItem struct {
	ID              int             `json:"id"`
	OrderID         int             `json:"order_id"`
	InventoryItemID int             `json:"inventory_item_id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"` // tax-inclusive
	BasePrice       decimal.Decimal `json:"base_price"` // per unit, tax excluded
	GSTRate         decimal.Decimal `json:"gst_rate"`
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// Customer holds profile, fallback address, and purchase analytics fields.
type Customer struct {
	ID            int             `json:"id"`
	ExternalKey   string          `json:"external_key"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	StateCode     string          `json:"state_code"`
	AddressLine   string          `json:"address_line"`
	City          string          `json:"city"`
	Pincode       string          `json:"pincode"`
	OrderCount    int             `json:"order_count"`
	LifetimeSpend decimal.Decimal `json:"lifetime_spend"`
	LastOrderAt   *time.Time      `json:"last_order_at,omitempty"`
}

// Address is a saved delivery address.
type Address struct {
	ID          int    `json:"id"`
	CustomerID  int    `json:"customer_id"`
	Label       string `json:"label"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	Pincode     string `json:"pincode"`
}

// complete reports whether the address has every field an order needs.
func (a Address) complete() bool {
	return a.AddressLine != "" && a.City != "" && a.StateCode != "" && a.Pincode != ""
}

// Coupon is a discount voucher. Percentage coupons may carry a cap.
type Coupon struct {
	ID            int
	Code          string
	DiscountType  string // "percentage" or "flat"
	DiscountValue decimal.Decimal
	MaxDiscount   *decimal.Decimal
	MinSubtotal   decimal.Decimal
	ValidFrom     time.Time
	ValidTo       time.Time
	UsageLimit    int // 0 = unlimited
	UsedCount     int
	IsActive      bool
}

// CartLine is one basket line resolved against the live catalog.
type CartLine struct {
	VariantID       int
	InventoryItemID int
	SKU             string
	Name            string
	Quantity        int
	UnitPrice       decimal.Decimal // tax-inclusive selling price
	GSTRate         decimal.Decimal
	LiveStock       int
	CODEnabled      bool
	OnlineEnabled   bool
}

// Cart is the actor's basket as read from cart management.
type Cart struct {
	ID         int
	CustomerID int
	AddressID  *int // nil requests the profile fallback address
	CouponCode string
	Lines      []CartLine
}

// LedgerEntry is the best-effort financial record derived from a committed
// order. Its absence never invalidates the order.
type LedgerEntry struct {
	ID            int             `json:"id"`
	OrderID       int             `json:"order_id"`
	EntryType     string          `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	FinancialYear string          `json:"financial_year"`
	Narration     string          `json:"narration"`
	CreatedAt     time.Time       `json:"created_at"`
}
