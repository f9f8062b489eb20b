package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"commerce-backoffice/internal/core"
)

// setupTestDB truncates and seeds the shared test catalog. All integration
// tests build on this seed.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE coupon_redemptions, order_items, orders, ledger_entries,
		    payment_intents, stock_adjustments, cart_items, carts,
		    customer_addresses, customers, product_variants, products,
		    pos_products, inventory_items, invoice_sequences, coupons
		    RESTART IDENTITY CASCADE;

		INSERT INTO inventory_items (sku, name, gst_rate, quantity, low_stock_threshold, status) VALUES
		('TEA-250',  'Assam Tea 250g',   5,  20, 5, 'in_stock'),
		('MUG-STD',  'Ceramic Mug',      18, 3,  5, 'low_stock'),
		('GIFT-BOX', 'Festive Gift Box', 18, 8,  2, 'in_stock');

		INSERT INTO pos_products (inventory_item_id, name, selling_price, quantity, status) VALUES
		(1, 'Assam Tea 250g',   105.00, 20, 'in_stock'),
		(2, 'Ceramic Mug',      118.00, 3,  'low_stock'),
		(3, 'Festive Gift Box', 590.00, 8,  'in_stock');

		INSERT INTO products (slug, name, cod_enabled, online_enabled) VALUES
		('assam-tea',   'Assam Tea 250g',   true,  true),
		('ceramic-mug', 'Ceramic Mug',      true,  true),
		('gift-box',    'Festive Gift Box', false, true);

		-- Variant thresholds deliberately differ from the canonical ones.
		INSERT INTO product_variants (product_id, inventory_item_id, sku, selling_price, stock_quantity, stock_status, low_stock_threshold) VALUES
		(1, 1, 'TEA-250-V',  105.00, 20, 'in_stock',  10),
		(2, 2, 'MUG-STD-V',  118.00, 3,  'low_stock', 10),
		(3, 3, 'GIFT-BOX-V', 590.00, 8,  'in_stock',  2);

		INSERT INTO customers (external_key, name, state_code, address_line, city, pincode) VALUES
		('cust-local',  'Asha Rao',     'KA', '12 MG Road', 'Bengaluru', '560001'),
		('cust-remote', 'Vikram Joshi', 'MH', '',           '',          '');

		INSERT INTO customer_addresses (customer_id, label, address_line, city, state_code, pincode) VALUES
		(2, 'home', '7 Marine Drive', 'Mumbai', 'MH', '400001');

		INSERT INTO invoice_sequences (prefix, pad_width, fy_start_month, last_number, is_active)
		VALUES ('INV', 5, 4, 0, true);

		INSERT INTO coupons (code, discount_type, discount_value, max_discount, min_subtotal, valid_from, valid_to, usage_limit, is_active)
		VALUES ('SAVE10', 'percentage', 10, 50, 500, NOW() - INTERVAL '1 day', NOW() + INTERVAL '30 days', 0, true);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestStockService_ApplyDelta_ClampsAtZero(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	stock := core.NewStockService(pool, zap.NewNop())

	// Removing 25 from an item holding 20 clamps at zero.
	rec, err := stock.ApplyDelta(ctx, 1, -25, core.MovementContext{
		Method: core.MethodManualAdjustment,
		Reason: "shrinkage audit",
		Actor:  "tester",
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if !rec.Clamped {
		t.Error("Expected the reconciliation to be flagged clamped")
	}
	if rec.AppliedDelta != -20 {
		t.Errorf("Expected applied delta -20, got %d", rec.AppliedDelta)
	}
	if rec.NewQuantity != 0 {
		t.Errorf("Expected new quantity 0, got %d", rec.NewQuantity)
	}
	if rec.Status != core.StatusOutOfStock {
		t.Errorf("Expected out_of_stock, got %s", rec.Status)
	}

	// The audit row records the movement as applied, not as requested.
	adjs, err := stock.Adjustments(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Adjustments failed: %v", err)
	}
	if len(adjs) != 1 {
		t.Fatalf("Expected 1 adjustment, got %d", len(adjs))
	}
	if adjs[0].Delta != -20 || adjs[0].PreviousQuantity != 20 || adjs[0].NewQuantity != 0 {
		t.Errorf("Audit row mismatch: %+v", adjs[0])
	}
}

func TestStockService_FanOut_MirrorsFollowCanonicalQuantity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	stock := core.NewStockService(pool, zap.NewNop())

	// Mug: 3 + 4 = 7. Canonical threshold 5 → in_stock. The variant keeps the
	// same quantity but classifies with its own threshold 10 → low_stock.
	rec, err := stock.ApplyDelta(ctx, 2, 4, core.MovementContext{
		Method: core.MethodPurchaseReceipt,
		Reason: "goods receipt GRN-7",
		Actor:  "tester",
	})
	if err != nil {
		t.Fatalf("ApplyDelta failed: %v", err)
	}
	if rec.Status != core.StatusInStock {
		t.Errorf("Expected canonical in_stock, got %s", rec.Status)
	}

	var posQty int
	var posStatus string
	if err := pool.QueryRow(ctx,
		"SELECT quantity, status FROM pos_products WHERE inventory_item_id = 2",
	).Scan(&posQty, &posStatus); err != nil {
		t.Fatalf("Failed to read POS mirror: %v", err)
	}
	if posQty != 7 || posStatus != "in_stock" {
		t.Errorf("POS mirror = (%d, %s), want (7, in_stock)", posQty, posStatus)
	}

	var varQty int
	var varStatus string
	if err := pool.QueryRow(ctx,
		"SELECT stock_quantity, stock_status FROM product_variants WHERE inventory_item_id = 2",
	).Scan(&varQty, &varStatus); err != nil {
		t.Fatalf("Failed to read variant mirror: %v", err)
	}
	if varQty != 7 {
		t.Errorf("Variant quantity = %d, want 7", varQty)
	}
	if varStatus != "low_stock" {
		t.Errorf("Variant status = %s, want low_stock under its own threshold", varStatus)
	}
}

func TestStockService_GetItemAndLevels(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	stock := core.NewStockService(pool, zap.NewNop())

	item, err := stock.GetItem(ctx, 1)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.SKU != "TEA-250" || item.Quantity != 20 {
		t.Errorf("Unexpected item: %+v", item)
	}

	levels, err := stock.StockLevels(ctx)
	if err != nil {
		t.Fatalf("StockLevels failed: %v", err)
	}
	if len(levels) != 3 {
		t.Errorf("Expected 3 items, got %d", len(levels))
	}
}
