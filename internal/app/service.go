package app

import (
	"context"
)

// ApplicationService is the single interface all transport adapters call.
// It decouples presentation from business logic. Implementations must contain
// no display logic of any kind.
type ApplicationService interface {
	// CheckoutPOS captures an in-store sale submitted by a terminal.
	CheckoutPOS(ctx context.Context, req POSCheckoutRequest) (*OrderResult, error)

	// CheckoutOnline places a cash-on-delivery order from the customer's cart.
	CheckoutOnline(ctx context.Context, req OnlineCheckoutRequest) (*OrderResult, error)

	// PrepareOnlinePayment prices the cart and returns a payment token with
	// the frozen amount.
	PrepareOnlinePayment(ctx context.Context, req OnlineCheckoutRequest) (*PaymentIntentResult, error)

	// ConfirmOnlinePayment commits the order behind a gateway-confirmed token.
	ConfirmOnlinePayment(ctx context.Context, token string) (*OrderResult, error)

	// GetOrder returns one order with its items.
	GetOrder(ctx context.Context, orderID int) (*OrderResult, error)

	// ListOrders returns recent orders, optionally filtered by channel.
	ListOrders(ctx context.Context, channel string, limit int) (*OrderListResult, error)

	// GetStockLevels returns every inventory item with quantity and status.
	GetStockLevels(ctx context.Context) (*StockResult, error)

	// AdjustStock applies a manual adjustment or purchase receipt to one item
	// and fans the result out to the sales-channel mirrors.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*AdjustmentResult, error)

	// ListAdjustments returns the movement audit trail for one item.
	ListAdjustments(ctx context.Context, itemID, limit int) (*AdjustmentListResult, error)

	// GetLedgerEntries returns recent financial ledger entries, optionally
	// filtered to one financial year.
	GetLedgerEntries(ctx context.Context, financialYear string, limit int) (*LedgerResult, error)
}
