package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// StockService owns all mutations of inventory_items. Every change goes
// through a signed delta, writes one stock_adjustments audit row, and is
// propagated to the read mirrors after commit. Increases (sales returns,
// receipts) and decreases share the single ApplyDelta path.
type StockService interface {
	// ApplyDeltaTx applies a signed quantity delta inside the caller's
	// transaction: lock row, clamp at zero, derive status, write audit.
	// Mirror fan-out is deliberately NOT part of the transaction; callers run
	// FanOut after their commit.
	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, itemID, delta int, mv MovementContext) (*Reconciliation, error)

	// ApplyDelta is the standalone form for manual adjustments and purchase
	// receipts: it wraps ApplyDeltaTx in its own transaction and runs the
	// fan-out afterwards.
	ApplyDelta(ctx context.Context, itemID, delta int, mv MovementContext) (*Reconciliation, error)

	// FanOut copies the canonical quantity to every mirror referencing the
	// item. Each mirror is attempted independently; failures are logged and
	// never returned — a stale mirror is repaired by the next fan-out.
	FanOut(ctx context.Context, itemID int)

	GetItem(ctx context.Context, itemID int) (*InventoryItem, error)
	StockLevels(ctx context.Context) ([]InventoryItem, error)
	Adjustments(ctx context.Context, itemID, limit int) ([]StockAdjustment, error)
}

type stockService struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewStockService(pool *pgxpool.Pool, log *zap.Logger) StockService {
	return &stockService{pool: pool, log: log}
}

func (s *stockService) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, itemID, delta int, mv MovementContext) (*Reconciliation, error) {
	var current, threshold int
	err := tx.QueryRow(ctx,
		"SELECT quantity, low_stock_threshold FROM inventory_items WHERE id = $1 FOR UPDATE",
		itemID,
	).Scan(&current, &threshold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("failed to lock inventory item %d: %w", itemID, err)
	}

	newQty := current + delta
	clamped := false
	if newQty < 0 {
		// Stock never goes negative. The audit row records the delta that was
		// actually applied, not the one requested.
		newQty = 0
		clamped = true
	}
	applied := newQty - current
	status := statusFor(newQty, threshold)

	_, err = tx.Exec(ctx,
		"UPDATE inventory_items SET quantity = $1, status = $2, updated_at = NOW() WHERE id = $3",
		newQty, string(status), itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item %d: %w", itemID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock_adjustments (inventory_item_id, previous_quantity, new_quantity, delta, method, reason, actor, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, itemID, current, newQty, applied, string(mv.Method), mv.Reason, mv.Actor, mv.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stock adjustment for item %d: %w", itemID, err)
	}

	return &Reconciliation{
		InventoryItemID:  itemID,
		PreviousQuantity: current,
		NewQuantity:      newQty,
		AppliedDelta:     applied,
		Status:           status,
		Clamped:          clamped,
	}, nil
}

func (s *stockService) ApplyDelta(ctx context.Context, itemID, delta int, mv MovementContext) (*Reconciliation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rec, err := s.ApplyDeltaTx(ctx, tx, itemID, delta, mv)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}

	s.FanOut(ctx, itemID)
	return rec, nil
}

func (s *stockService) FanOut(ctx context.Context, itemID int) {
	var qty, threshold int
	var status string
	err := s.pool.QueryRow(ctx,
		"SELECT quantity, low_stock_threshold, status FROM inventory_items WHERE id = $1",
		itemID,
	).Scan(&qty, &threshold, &status)
	if err != nil {
		s.log.Error("stock fan-out: failed to read canonical record",
			zap.Int("inventory_item_id", itemID), zap.Error(err))
		return
	}

	// POS mirror gets quantity and status copied verbatim.
	if _, err := s.pool.Exec(ctx,
		"UPDATE pos_products SET quantity = $1, status = $2, updated_at = NOW() WHERE inventory_item_id = $3",
		qty, status, itemID,
	); err != nil {
		s.log.Error("stock fan-out: pos mirror update failed",
			zap.Int("inventory_item_id", itemID), zap.Error(err))
	}

	// Online variants share the quantity but each derives its status from its
	// own low-stock threshold.
	rows, err := s.pool.Query(ctx,
		"SELECT id, low_stock_threshold FROM product_variants WHERE inventory_item_id = $1",
		itemID,
	)
	if err != nil {
		s.log.Error("stock fan-out: variant query failed",
			zap.Int("inventory_item_id", itemID), zap.Error(err))
		return
	}

	type variantRef struct{ id, threshold int }
	var variants []variantRef
	for rows.Next() {
		var v variantRef
		if err := rows.Scan(&v.id, &v.threshold); err != nil {
			rows.Close()
			s.log.Error("stock fan-out: variant scan failed",
				zap.Int("inventory_item_id", itemID), zap.Error(err))
			return
		}
		variants = append(variants, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		s.log.Error("stock fan-out: variant iteration failed",
			zap.Int("inventory_item_id", itemID), zap.Error(err))
		return
	}

	for _, v := range variants {
		vStatus := statusFor(qty, v.threshold)
		if _, err := s.pool.Exec(ctx,
			"UPDATE product_variants SET stock_quantity = $1, stock_status = $2, updated_at = NOW() WHERE id = $3",
			qty, string(vStatus), v.id,
		); err != nil {
			s.log.Error("stock fan-out: variant mirror update failed",
				zap.Int("inventory_item_id", itemID), zap.Int("variant_id", v.id), zap.Error(err))
		}
	}
}

func (s *stockService) GetItem(ctx context.Context, itemID int) (*InventoryItem, error) {
	var it InventoryItem
	err := s.pool.QueryRow(ctx, `
		SELECT id, sku, name, category, unit, purchase_price, gst_rate,
		       quantity, low_stock_threshold, status, created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`, itemID).Scan(
		&it.ID, &it.SKU, &it.Name, &it.Category, &it.Unit, &it.PurchasePrice, &it.GSTRate,
		&it.Quantity, &it.LowStockThreshold, &it.Status, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("failed to fetch inventory item %d: %w", itemID, err)
	}
	return &it, nil
}

func (s *stockService) StockLevels(ctx context.Context) ([]InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sku, name, category, unit, purchase_price, gst_rate,
		       quantity, low_stock_threshold, status, created_at, updated_at
		FROM inventory_items
		ORDER BY sku
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(
			&it.ID, &it.SKU, &it.Name, &it.Category, &it.Unit, &it.PurchasePrice, &it.GSTRate,
			&it.Quantity, &it.LowStockThreshold, &it.Status, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *stockService) Adjustments(ctx context.Context, itemID, limit int) ([]StockAdjustment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, inventory_item_id, previous_quantity, new_quantity, delta,
		       method, reason, actor, order_id, created_at
		FROM stock_adjustments
		WHERE inventory_item_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock adjustments: %w", err)
	}
	defer rows.Close()

	var adjs []StockAdjustment
	for rows.Next() {
		var a StockAdjustment
		if err := rows.Scan(
			&a.ID, &a.InventoryItemID, &a.PreviousQuantity, &a.NewQuantity, &a.Delta,
			&a.Method, &a.Reason, &a.Actor, &a.OrderID, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock adjustment: %w", err)
		}
		adjs = append(adjs, a)
	}
	return adjs, rows.Err()
}
