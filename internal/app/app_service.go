package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"commerce-backoffice/internal/core"
)

type appService struct {
	checkout core.CheckoutService
	stock    core.StockService
	ledger   core.LedgerService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(checkout core.CheckoutService, stock core.StockService, ledger core.LedgerService) ApplicationService {
	return &appService{
		checkout: checkout,
		stock:    stock,
		ledger:   ledger,
	}
}

func (s *appService) CheckoutPOS(ctx context.Context, req POSCheckoutRequest) (*OrderResult, error) {
	discount := decimal.Zero
	if req.Discount != "" {
		var err error
		if discount, err = decimal.NewFromString(req.Discount); err != nil {
			return nil, fmt.Errorf("invalid discount %q: %w", req.Discount, err)
		}
	}

	lines := make([]core.POSLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, core.POSLineInput{SKU: l.SKU, Quantity: l.Quantity})
	}

	started := time.Now()
	order, err := s.checkout.CheckoutPOS(ctx, core.POSCheckoutRequest{
		CustomerKey:    req.CustomerKey,
		Lines:          lines,
		PaymentMethod:  req.PaymentMethod,
		Discount:       discount,
		Operator:       req.Operator,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return orderResult(order, started), nil
}

func (s *appService) CheckoutOnline(ctx context.Context, req OnlineCheckoutRequest) (*OrderResult, error) {
	started := time.Now()
	order, err := s.checkout.CheckoutOnline(ctx, core.OnlineCheckoutRequest{
		CustomerKey:    req.CustomerKey,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return orderResult(order, started), nil
}

func (s *appService) PrepareOnlinePayment(ctx context.Context, req OnlineCheckoutRequest) (*PaymentIntentResult, error) {
	intent, err := s.checkout.PrepareOnlinePayment(ctx, core.OnlineCheckoutRequest{
		CustomerKey:    req.CustomerKey,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return &PaymentIntentResult{Intent: intent}, nil
}

func (s *appService) ConfirmOnlinePayment(ctx context.Context, token string) (*OrderResult, error) {
	started := time.Now()
	order, err := s.checkout.ConfirmOnlinePayment(ctx, token)
	if err != nil {
		return nil, err
	}
	return orderResult(order, started), nil
}

func (s *appService) GetOrder(ctx context.Context, orderID int) (*OrderResult, error) {
	order, err := s.checkout.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (s *appService) ListOrders(ctx context.Context, channel string, limit int) (*OrderListResult, error) {
	orders, err := s.checkout.ListOrders(ctx, channel, limit)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	items, err := s.stock.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Items: items}, nil
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*AdjustmentResult, error) {
	method := core.AdjustmentMethod(req.Method)
	switch method {
	case core.MethodManualAdjustment, core.MethodPurchaseReceipt, core.MethodSalesReturn:
	default:
		return nil, fmt.Errorf("adjustment method %q is not allowed here", req.Method)
	}
	if req.Delta == 0 {
		return nil, fmt.Errorf("adjustment delta must be non-zero")
	}

	rec, err := s.stock.ApplyDelta(ctx, req.InventoryItemID, req.Delta, core.MovementContext{
		Method: method,
		Reason: req.Reason,
		Actor:  req.Actor,
	})
	if err != nil {
		return nil, err
	}
	return &AdjustmentResult{Reconciliation: rec}, nil
}

func (s *appService) ListAdjustments(ctx context.Context, itemID, limit int) (*AdjustmentListResult, error) {
	adj, err := s.stock.Adjustments(ctx, itemID, limit)
	if err != nil {
		return nil, err
	}
	return &AdjustmentListResult{Adjustments: adj}, nil
}

func (s *appService) GetLedgerEntries(ctx context.Context, financialYear string, limit int) (*LedgerResult, error) {
	entries, err := s.ledger.Entries(ctx, financialYear, limit)
	if err != nil {
		return nil, err
	}
	return &LedgerResult{Entries: entries}, nil
}

// orderResult marks an order as a duplicate replay when it was committed
// before this request started.
func orderResult(o *core.Order, started time.Time) *OrderResult {
	return &OrderResult{Order: o, Duplicate: o.CreatedAt.Before(started)}
}
