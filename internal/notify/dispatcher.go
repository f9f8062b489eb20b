package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"commerce-backoffice/internal/core"
)

// Dispatcher runs the post-commit work for an order: POS/storefront mirror
// fan-out, ledger entry, customer analytics, and the Kafka event. Each task
// is independent and retried on its own; a task that exhausts its retries is
// logged and dropped without affecting the others or the committed order.
type Dispatcher struct {
	stock     core.StockService
	ledger    core.LedgerService
	customers core.CustomerService
	producer  Producer
	log       *zap.Logger

	attempts int
	backoff  time.Duration
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewDispatcher(stock core.StockService, ledger core.LedgerService,
	customers core.CustomerService, producer Producer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		stock:     stock,
		ledger:    ledger,
		customers: customers,
		producer:  producer,
		log:       log,
		attempts:  3,
		backoff:   200 * time.Millisecond,
		timeout:   15 * time.Second,
	}
}

// OrderCommitted schedules the order's side effects in the background and
// returns immediately.
func (d *Dispatcher) OrderCommitted(o *core.Order) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.run(ctx, o)
	}()
}

func (d *Dispatcher) run(ctx context.Context, o *core.Order) {
	log := d.log.With(zap.Int("order_id", o.ID), zap.String("order_number", o.OrderNumber))

	// FanOut logs its own partial failures and mirrors self-heal on the next
	// movement, so it is not retried here.
	for _, it := range o.Items {
		d.stock.FanOut(ctx, it.InventoryItemID)
	}

	d.attempt(ctx, log, "ledger_entry", func(ctx context.Context) error {
		return d.ledger.RecordSale(ctx, o)
	})

	d.attempt(ctx, log, "customer_analytics", func(ctx context.Context) error {
		return d.customers.BumpAnalytics(ctx, o.CustomerID, o.Total)
	})

	d.attempt(ctx, log, "order_event", func(ctx context.Context) error {
		return d.producer.OrderPlaced(ctx, o)
	})
}

func (d *Dispatcher) attempt(ctx context.Context, log *zap.Logger, task string, fn func(context.Context) error) {
	var err error
	for i := 0; i < d.attempts; i++ {
		if err = fn(ctx); err == nil {
			return
		}
		select {
		case <-ctx.Done():
			log.Warn("side effect abandoned", zap.String("task", task), zap.Error(ctx.Err()))
			return
		case <-time.After(d.backoff * time.Duration(i+1)):
		}
	}
	log.Error("side effect failed after retries",
		zap.String("task", task),
		zap.Int("attempts", d.attempts),
		zap.Error(err))
}

// Wait blocks until all scheduled side effects have finished. Used during
// shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
