package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"commerce-backoffice/internal/core"
)

type fakeStock struct {
	core.StockService
	fanouts int32
}

func (f *fakeStock) FanOut(_ context.Context, _ int) {
	atomic.AddInt32(&f.fanouts, 1)
}

type fakeLedger struct {
	core.LedgerService
	failures int32 // fail this many times before succeeding
	calls    int32
}

func (f *fakeLedger) RecordSale(_ context.Context, _ *core.Order) error {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= atomic.LoadInt32(&f.failures) {
		return errors.New("ledger unavailable")
	}
	return nil
}

type fakeCustomers struct {
	core.CustomerService
	bumps int32
}

func (f *fakeCustomers) BumpAnalytics(_ context.Context, _ int, _ decimal.Decimal) error {
	atomic.AddInt32(&f.bumps, 1)
	return nil
}

type fakeProducer struct {
	fail   bool
	events int32
}

func (f *fakeProducer) OrderPlaced(_ context.Context, _ *core.Order) error {
	if f.fail {
		return errors.New("broker down")
	}
	atomic.AddInt32(&f.events, 1)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func testOrder() *core.Order {
	return &core.Order{
		ID:          7,
		OrderNumber: "POS-ABC123",
		CustomerID:  1,
		Total:       decimal.NewFromInt(475),
		Items: []core.OrderItem{
			{InventoryItemID: 1, Quantity: 2},
			{InventoryItemID: 3, Quantity: 1},
		},
		CreatedAt: time.Now(),
	}
}

func TestDispatcher_RunsAllTasks(t *testing.T) {
	stock := &fakeStock{}
	ledger := &fakeLedger{}
	customers := &fakeCustomers{}
	producer := &fakeProducer{}

	d := NewDispatcher(stock, ledger, customers, producer, zap.NewNop())
	d.backoff = time.Millisecond

	d.OrderCommitted(testOrder())
	d.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&stock.fanouts), "one fan-out per order item")
	assert.Equal(t, int32(1), atomic.LoadInt32(&ledger.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&customers.bumps))
	assert.Equal(t, int32(1), atomic.LoadInt32(&producer.events))
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	stock := &fakeStock{}
	ledger := &fakeLedger{failures: 2}
	customers := &fakeCustomers{}
	producer := &fakeProducer{}

	d := NewDispatcher(stock, ledger, customers, producer, zap.NewNop())
	d.backoff = time.Millisecond

	d.OrderCommitted(testOrder())
	d.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&ledger.calls), "two failures then success")
}

func TestDispatcher_FailedTaskDoesNotBlockOthers(t *testing.T) {
	stock := &fakeStock{}
	ledger := &fakeLedger{failures: 100} // never recovers
	customers := &fakeCustomers{}
	producer := &fakeProducer{}

	d := NewDispatcher(stock, ledger, customers, producer, zap.NewNop())
	d.backoff = time.Millisecond

	d.OrderCommitted(testOrder())
	d.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&ledger.calls), "gives up after the retry budget")
	assert.Equal(t, int32(1), atomic.LoadInt32(&customers.bumps), "later tasks still run")
	assert.Equal(t, int32(1), atomic.LoadInt32(&producer.events))
}
