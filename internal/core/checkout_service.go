package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// duplicateWindow is the trailing interval during which a repeat submission
// from the same actor and channel is treated as a duplicate of the committed
// order rather than a new one.
const duplicateWindow = 30 * time.Second

// PaymentGateway is the port for deferred-capture confirmation. The core
// never speaks the gateway protocol; it only consumes an opaque success
// signal plus the external transaction identifier.
type PaymentGateway interface {
	Verify(ctx context.Context, token string) (gatewayTxn string, err error)
}

// SideEffects receives committed orders for best-effort downstream work:
// mirror fan-out, ledger entry, analytics, notifications. Implementations
// must never fail the caller.
type SideEffects interface {
	OrderCommitted(o *Order)
}

// CheckoutConfig carries the pricing environment.
type CheckoutConfig struct {
	SellerStateCode string
	OnlineShipping  decimal.Decimal // flat shipping applied to online orders
}

// CheckoutService is the order orchestrator: it turns a POS basket or an
// online cart into a durable order with tax, invoice number and stock
// decrement in one transaction, then hands the order to SideEffects.
type CheckoutService interface {
	// CheckoutPOS captures an in-store sale synchronously. Lines are
	// submitted directly by the terminal; tax is always same-state.
	CheckoutPOS(ctx context.Context, req POSCheckoutRequest) (*Order, error)

	// CheckoutOnline captures a cash-on-delivery order from the customer's
	// saved cart, synchronously.
	CheckoutOnline(ctx context.Context, req OnlineCheckoutRequest) (*Order, error)

	// PrepareOnlinePayment prices the cart and freezes the computed totals
	// into a payment intent. The caller sends the returned token to the
	// payment gateway.
	PrepareOnlinePayment(ctx context.Context, req OnlineCheckoutRequest) (*PaymentIntent, error)

	// ConfirmOnlinePayment commits the order for a gateway-confirmed intent
	// using the cached totals; the cart is never re-priced.
	ConfirmOnlinePayment(ctx context.Context, token string) (*Order, error)

	GetOrder(ctx context.Context, orderID int) (*Order, error)
	ListOrders(ctx context.Context, channel string, limit int) ([]Order, error)
}

type POSLineInput struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type POSCheckoutRequest struct {
	CustomerKey    string          `json:"customer_key"`
	Lines          []POSLineInput  `json:"lines"`
	PaymentMethod  string          `json:"payment_method"` // cash, card, upi
	Discount       decimal.Decimal `json:"discount"`
	Operator       string          `json:"operator"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

type OnlineCheckoutRequest struct {
	CustomerKey    string `json:"customer_key"`
	PaymentMethod  string `json:"payment_method"` // cod is immediate-capture
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// PaymentIntent is the deferred-capture handle returned to the caller.
type PaymentIntent struct {
	Token  string          `json:"token"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
}

type checkoutService struct {
	pool      *pgxpool.Pool
	stock     StockService
	sequences SequenceService
	customers CustomerService
	gateway   PaymentGateway
	effects   SideEffects
	guard     *SubmissionGuard
	cfg       CheckoutConfig
	log       *zap.Logger
}

func NewCheckoutService(pool *pgxpool.Pool, stock StockService, sequences SequenceService,
	customers CustomerService, gateway PaymentGateway, effects SideEffects,
	guard *SubmissionGuard, cfg CheckoutConfig, log *zap.Logger) CheckoutService {
	return &checkoutService{
		pool:      pool,
		stock:     stock,
		sequences: sequences,
		customers: customers,
		gateway:   gateway,
		effects:   effects,
		guard:     guard,
		cfg:       cfg,
		log:       log,
	}
}

// ── POS channel ───────────────────────────────────────────────────────────────

func (s *checkoutService) CheckoutPOS(ctx context.Context, req POSCheckoutRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	customer, err := s.customers.GetByKey(ctx, req.CustomerKey)
	if err != nil {
		return nil, err
	}

	lines, err := s.resolvePOSLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	// In-store sale: buyer and seller share the state, so tax always splits.
	priced := PriceOrder(lines, s.cfg.SellerStateCode, s.cfg.SellerStateCode,
		req.Discount, decimal.Zero, decimal.Zero)

	return s.finalize(ctx, finalization{
		customer:       customer,
		channel:        ChannelPOS,
		paymentMethod:  req.PaymentMethod,
		paymentStatus:  "paid",
		actor:          req.Operator,
		priced:         priced,
		idempotencyKey: req.IdempotencyKey,
	})
}

func (s *checkoutService) resolvePOSLines(ctx context.Context, inputs []POSLineInput) ([]CartLine, error) {
	lines := make([]CartLine, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %s has non-positive quantity", ErrEmptyCart, in.SKU)
		}
		var l CartLine
		err := s.pool.QueryRow(ctx, `
			SELECT ii.id, ii.sku, ii.name, ii.gst_rate, ii.quantity, pp.selling_price
			FROM inventory_items ii
			JOIN pos_products pp ON pp.inventory_item_id = ii.id
			WHERE ii.sku = $1
		`, in.SKU).Scan(&l.InventoryItemID, &l.SKU, &l.Name, &l.GSTRate, &l.LiveStock, &l.UnitPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("product %s not found in POS catalog", in.SKU)
			}
			return nil, fmt.Errorf("failed to resolve POS line %s: %w", in.SKU, err)
		}
		l.Quantity = in.Quantity
		if l.Quantity > l.LiveStock {
			return nil, fmt.Errorf("%w: %s has %d available, requested %d",
				ErrInsufficientStock, l.SKU, l.LiveStock, l.Quantity)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// ── Online channel ────────────────────────────────────────────────────────────

func (s *checkoutService) CheckoutOnline(ctx context.Context, req OnlineCheckoutRequest) (*Order, error) {
	prep, err := s.prepareOnline(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.finalize(ctx, finalization{
		customer:       prep.customer,
		channel:        ChannelOnline,
		paymentMethod:  req.PaymentMethod,
		paymentStatus:  "pending", // collected on delivery
		actor:          req.CustomerKey,
		priced:         prep.priced,
		couponID:       prep.couponID,
		shipAddress:    prep.shipAddress,
		cartID:         prep.cartID,
		idempotencyKey: req.IdempotencyKey,
	})
}

// onlinePreparation is the fully-validated, fully-priced cart, ready to
// commit or to freeze into a payment intent.
type onlinePreparation struct {
	customer    *Customer
	priced      PricedOrder
	couponID    *int
	couponCode  string
	shipAddress string
	cartID      int
}

func (s *checkoutService) prepareOnline(ctx context.Context, req OnlineCheckoutRequest) (*onlinePreparation, error) {
	customer, err := s.customers.GetByKey(ctx, req.CustomerKey)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	addr, err := s.customers.ResolveAddress(ctx, customer.ID, cart.AddressID)
	if err != nil {
		return nil, err
	}

	for _, l := range cart.Lines {
		if !l.OnlineEnabled {
			return nil, fmt.Errorf("%w: %s is not sold online", ErrChannelUnavailable, l.SKU)
		}
		if req.PaymentMethod == "cod" && !l.CODEnabled {
			return nil, fmt.Errorf("%w: %s cannot be ordered cash-on-delivery", ErrChannelUnavailable, l.SKU)
		}
		if l.Quantity > l.LiveStock {
			return nil, fmt.Errorf("%w: %s has %d available, requested %d",
				ErrInsufficientStock, l.SKU, l.LiveStock, l.Quantity)
		}
	}

	// Subtotal for coupon minimum checks is the tax-inclusive cart value.
	inclusiveSubtotal := decimal.Zero
	for _, l := range cart.Lines {
		inclusiveSubtotal = inclusiveSubtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	couponDiscount := decimal.Zero
	var couponID *int
	if cart.CouponCode != "" {
		coupon, err := s.getCoupon(ctx, cart.CouponCode)
		if err != nil {
			return nil, err
		}
		couponDiscount, err = ValidateCoupon(*coupon, inclusiveSubtotal, time.Now())
		if err != nil {
			return nil, err
		}
		couponID = &coupon.ID
	}

	priced := PriceOrder(cart.Lines, s.cfg.SellerStateCode, addr.StateCode,
		decimal.Zero, couponDiscount, s.cfg.OnlineShipping)

	return &onlinePreparation{
		customer:    customer,
		priced:      priced,
		couponID:    couponID,
		couponCode:  cart.CouponCode,
		shipAddress: formatAddress(addr),
		cartID:      cart.ID,
	}, nil
}

func (s *checkoutService) PrepareOnlinePayment(ctx context.Context, req OnlineCheckoutRequest) (*PaymentIntent, error) {
	prep, err := s.prepareOnline(ctx, req)
	if err != nil {
		return nil, err
	}

	// The token doubles as the durable idempotency key of the eventual order,
	// so a retried or concurrent confirmation always resolves to it.
	token := uuid.NewString()
	idemKey := req.IdempotencyKey
	if idemKey == "" {
		idemKey = token
	}

	snap := checkoutSnapshot{
		CustomerKey:    req.CustomerKey,
		PaymentMethod:  req.PaymentMethod,
		Priced:         prep.priced,
		CouponID:       prep.couponID,
		ShipAddress:    prep.shipAddress,
		CartID:         prep.cartID,
		IdempotencyKey: idemKey,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO payment_intents (token, customer_id, priced_order, status)
		VALUES ($1, $2, $3, 'pending')
	`, token, prep.customer.ID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to store payment intent: %w", err)
	}

	return &PaymentIntent{Token: token, Amount: prep.priced.Total, Status: "pending"}, nil
}

// checkoutSnapshot freezes the priced order at payment initiation so the
// gateway confirmation commits against these totals even if the cart or
// catalog changed in between.
type checkoutSnapshot struct {
	CustomerKey    string      `json:"customer_key"`
	PaymentMethod  string      `json:"payment_method"`
	Priced         PricedOrder `json:"priced"`
	CouponID       *int        `json:"coupon_id,omitempty"`
	ShipAddress    string      `json:"ship_address"`
	CartID         int         `json:"cart_id"`
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
}

// ConfirmOnlinePayment is safe to retry: the intent is consumed inside the
// commit transaction, so any failure before commit leaves it pending, and a
// retry against an already-consumed intent resolves to the committed order.
func (s *checkoutService) ConfirmOnlinePayment(ctx context.Context, token string) (*Order, error) {
	var payload []byte
	var status string
	err := s.pool.QueryRow(ctx,
		"SELECT priced_order, status FROM payment_intents WHERE token = $1",
		token,
	).Scan(&payload, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment intent %s not found", token)
		}
		return nil, fmt.Errorf("failed to load payment intent: %w", err)
	}

	var snap checkoutSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode checkout snapshot: %w", err)
	}

	if status == "consumed" {
		return s.orderByIdempotencyKey(ctx, snap.IdempotencyKey)
	}
	if status != "pending" {
		return nil, fmt.Errorf("payment intent %s is %s", token, status)
	}

	gatewayTxn, err := s.gateway.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentNotConfirmed, err)
	}

	customer, err := s.customers.GetByKey(ctx, snap.CustomerKey)
	if err != nil {
		return nil, err
	}

	return s.finalize(ctx, finalization{
		customer:       customer,
		channel:        ChannelOnline,
		paymentMethod:  snap.PaymentMethod,
		paymentStatus:  "paid",
		paymentRef:     gatewayTxn,
		actor:          snap.CustomerKey,
		priced:         snap.Priced,
		couponID:       snap.CouponID,
		shipAddress:    snap.ShipAddress,
		cartID:         snap.CartID,
		idempotencyKey: snap.IdempotencyKey,
		consumeToken:   token,
	})
}

// orderByIdempotencyKey resolves a replayed submission to its committed order.
func (s *checkoutService) orderByIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM orders WHERE idempotency_key = $1",
		key,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no order found for idempotency key %s", key)
		}
		return nil, fmt.Errorf("failed to resolve order by idempotency key: %w", err)
	}
	return s.GetOrder(ctx, id)
}

// ── Shared finalization ───────────────────────────────────────────────────────

// finalization is everything the commit transaction needs, with pricing
// already done.
type finalization struct {
	customer       *Customer
	channel        Channel
	paymentMethod  string
	paymentStatus  string
	paymentRef     string
	actor          string
	priced         PricedOrder
	couponID       *int
	shipAddress    string
	cartID         int // 0 = nothing to clear
	idempotencyKey string
	consumeToken   string // payment intent to consume atomically with the order
}

// finalize runs the atomic region: duplicate detection, invoice allocation,
// order persistence, stock decrement, coupon redemption, cart clearing — one
// transaction. Side effects run after commit and never affect the result.
func (s *checkoutService) finalize(ctx context.Context, fin finalization) (*Order, error) {
	actorKey := fmt.Sprintf("%s:%s", fin.customer.ExternalKey, fin.channel)
	if !s.guard.TryAcquire(actorKey) {
		return nil, ErrAlreadyProcessing
	}
	defer s.guard.Release(actorKey)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Duplicate protection, evaluated regardless of guard state: a committed
	// order for this actor/channel inside the trailing window, or a reused
	// idempotency key, resolves to the existing order with side effects
	// suppressed.
	prior, err := s.findDuplicate(ctx, tx, fin)
	if err != nil {
		return nil, err
	}
	if prior != 0 {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			return nil, err
		}
		// The prior order already covers this payment; retire the intent so
		// it cannot be replayed against a third submission.
		if fin.consumeToken != "" {
			if _, err := s.pool.Exec(ctx,
				"UPDATE payment_intents SET status = 'consumed', gateway_txn = $2 WHERE token = $1 AND status = 'pending'",
				fin.consumeToken, fin.paymentRef,
			); err != nil {
				s.log.Warn("failed to retire payment intent for duplicate order",
					zap.String("token", fin.consumeToken), zap.Error(err))
			}
		}
		s.log.Info("duplicate submission resolved to existing order",
			zap.String("actor", actorKey), zap.Int("order_id", prior))
		return s.GetOrder(ctx, prior)
	}

	now := time.Now()
	invoiceNumber, err := s.sequences.AllocateTx(ctx, tx, now)
	if err != nil {
		return nil, err
	}

	orderNumber := newOrderNumber(fin.channel)
	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_number, invoice_number, channel, customer_id, status,
		                    subtotal, discount, coupon_discount, shipping, cgst, sgst, igst, total,
		                    gst_type, payment_method, payment_status, payment_reference, ship_address,
		                    financial_year, accounting_period, idempotency_key)
		VALUES ($1, NULLIF($2, ''), $3, $4, 'placed',
		        $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17,
		        $18, $19, NULLIF($20, ''))
		RETURNING id
	`,
		orderNumber, invoiceNumber, string(fin.channel), fin.customer.ID,
		fin.priced.Subtotal.Round(2), fin.priced.Discount, fin.priced.CouponDiscount,
		fin.priced.Shipping, fin.priced.CGST.Round(2), fin.priced.SGST.Round(2),
		fin.priced.IGST.Round(2), fin.priced.Total,
		string(fin.priced.GSTType), fin.paymentMethod, fin.paymentStatus, fin.paymentRef,
		fin.shipAddress, FinancialYearLabel(now, 4), AccountingPeriod(now), fin.idempotencyKey,
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, l := range fin.priced.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, inventory_item_id, sku, name, quantity,
			                         unit_price, base_price, gst_rate, cgst, sgst, igst, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, orderID, l.InventoryItemID, l.SKU, l.Name, l.Quantity,
			l.UnitPrice, l.BasePrice.Round(4), l.GSTRate,
			l.CGST.Round(4), l.SGST.Round(4), l.IGST.Round(4), l.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item %s: %w", l.SKU, err)
		}

		// Re-check under the row lock: pre-pricing validation happened outside
		// the transaction and a concurrent order may have taken the stock.
		var live int
		err = tx.QueryRow(ctx,
			"SELECT quantity FROM inventory_items WHERE id = $1 FOR UPDATE",
			l.InventoryItemID,
		).Scan(&live)
		if err != nil {
			return nil, fmt.Errorf("failed to lock inventory for %s: %w", l.SKU, err)
		}
		if live < l.Quantity {
			return nil, fmt.Errorf("%w: %s has %d available, requested %d",
				ErrInsufficientStock, l.SKU, live, l.Quantity)
		}

		if _, err := s.stock.ApplyDeltaTx(ctx, tx, l.InventoryItemID, -l.Quantity, MovementContext{
			Method:  MethodSalesOrder,
			Reason:  fmt.Sprintf("order %s", orderNumber),
			Actor:   fin.actor,
			OrderID: &orderID,
		}); err != nil {
			return nil, err
		}
	}

	if fin.couponID != nil {
		if _, err := tx.Exec(ctx, `
			INSERT INTO coupon_redemptions (coupon_id, order_id, amount)
			VALUES ($1, $2, $3)
			ON CONFLICT (coupon_id, order_id) DO NOTHING
		`, *fin.couponID, orderID, fin.priced.CouponDiscount); err != nil {
			return nil, fmt.Errorf("failed to record coupon redemption: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE coupons SET used_count = used_count + 1 WHERE id = $1",
			*fin.couponID,
		); err != nil {
			return nil, fmt.Errorf("failed to update coupon usage: %w", err)
		}
	}

	if fin.cartID != 0 {
		if _, err := tx.Exec(ctx, "DELETE FROM cart_items WHERE cart_id = $1", fin.cartID); err != nil {
			return nil, fmt.Errorf("failed to clear cart: %w", err)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE carts SET coupon_code = '', address_id = NULL, updated_at = NOW() WHERE id = $1",
			fin.cartID,
		); err != nil {
			return nil, fmt.Errorf("failed to reset cart: %w", err)
		}
	}

	if fin.consumeToken != "" {
		tag, err := tx.Exec(ctx,
			"UPDATE payment_intents SET status = 'consumed', gateway_txn = $2 WHERE token = $1 AND status = 'pending'",
			fin.consumeToken, fin.paymentRef,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to consume payment intent: %w", err)
		}
		// Zero rows means a concurrent confirmation won the race; its
		// committed order covers this submission.
		if tag.RowsAffected() == 0 {
			if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
				return nil, err
			}
			return s.orderByIdempotencyKey(ctx, fin.idempotencyKey)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.effects.OrderCommitted(order)
	return order, nil
}

// findDuplicate returns a prior order ID when this submission duplicates a
// recently committed one, or 0. Query errors are surfaced: a transient DB
// failure must abort the submission rather than silently skip the check.
func (s *checkoutService) findDuplicate(ctx context.Context, tx pgx.Tx, fin finalization) (int, error) {
	var prior int
	if fin.idempotencyKey != "" {
		err := tx.QueryRow(ctx,
			"SELECT id FROM orders WHERE idempotency_key = $1",
			fin.idempotencyKey,
		).Scan(&prior)
		switch {
		case err == nil:
			return prior, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return 0, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	err := tx.QueryRow(ctx, `
		SELECT id FROM orders
		WHERE customer_id = $1 AND channel = $2 AND total = $3 AND created_at > NOW() - $4::interval
		ORDER BY id DESC
		LIMIT 1
	`, fin.customer.ID, string(fin.channel), fin.priced.Total,
		fmt.Sprintf("%d seconds", int(duplicateWindow.Seconds())),
	).Scan(&prior)
	switch {
	case err == nil:
		return prior, nil
	case errors.Is(err, pgx.ErrNoRows):
		return 0, nil
	default:
		return 0, fmt.Errorf("failed to check duplicate window: %w", err)
	}
}

func newOrderNumber(ch Channel) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return fmt.Sprintf("%s-%s", strings.ToUpper(string(ch)), id)
}

func formatAddress(a *Address) string {
	return fmt.Sprintf("%s, %s, %s %s", a.AddressLine, a.City, a.StateCode, a.Pincode)
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *checkoutService) loadCart(ctx context.Context, customerID int) (*Cart, error) {
	var cart Cart
	err := s.pool.QueryRow(ctx,
		"SELECT id, customer_id, address_id, coupon_code FROM carts WHERE customer_id = $1",
		customerID,
	).Scan(&cart.ID, &cart.CustomerID, &cart.AddressID, &cart.CouponCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to load cart for customer %d: %w", customerID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ci.variant_id, ii.id, pv.sku, p.name, ci.quantity,
		       pv.selling_price, ii.gst_rate, ii.quantity,
		       p.cod_enabled, p.online_enabled
		FROM cart_items ci
		JOIN product_variants pv ON pv.id = ci.variant_id
		JOIN products p          ON p.id = pv.product_id
		JOIN inventory_items ii  ON ii.id = pv.inventory_item_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l CartLine
		if err := rows.Scan(
			&l.VariantID, &l.InventoryItemID, &l.SKU, &l.Name, &l.Quantity,
			&l.UnitPrice, &l.GSTRate, &l.LiveStock,
			&l.CODEnabled, &l.OnlineEnabled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Lines = append(cart.Lines, l)
	}
	return &cart, rows.Err()
}

func (s *checkoutService) getCoupon(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, discount_type, discount_value, max_discount, min_subtotal,
		       valid_from, valid_to, usage_limit, used_count, is_active
		FROM coupons
		WHERE code = $1
	`, code).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MaxDiscount, &c.MinSubtotal,
		&c.ValidFrom, &c.ValidTo, &c.UsageLimit, &c.UsedCount, &c.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponInvalid
		}
		return nil, fmt.Errorf("failed to fetch coupon %s: %w", code, err)
	}
	return &c, nil
}

func (s *checkoutService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	var o Order
	err := s.pool.QueryRow(ctx, `
		SELECT id, order_number, invoice_number, channel, customer_id, status,
		       subtotal, discount, coupon_discount, shipping, cgst, sgst, igst, total,
		       gst_type, payment_method, payment_status, payment_reference, ship_address,
		       financial_year, accounting_period, created_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.OrderNumber, &o.InvoiceNumber, &o.Channel, &o.CustomerID, &o.Status,
		&o.Subtotal, &o.Discount, &o.CouponDiscount, &o.Shipping, &o.CGST, &o.SGST, &o.IGST, &o.Total,
		&o.GSTType, &o.PaymentMethod, &o.PaymentStatus, &o.PaymentReference, &o.ShipAddress,
		&o.FinancialYear, &o.AccountingPeriod, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, inventory_item_id, sku, name, quantity,
		       unit_price, base_price, gst_rate, cgst, sgst, igst, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.InventoryItemID, &it.SKU, &it.Name, &it.Quantity,
			&it.UnitPrice, &it.BasePrice, &it.GSTRate, &it.CGST, &it.SGST, &it.IGST, &it.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (s *checkoutService) ListOrders(ctx context.Context, channel string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, order_number, invoice_number, channel, customer_id, status,
		       subtotal, discount, coupon_discount, shipping, cgst, sgst, igst, total,
		       gst_type, payment_method, payment_status, payment_reference, ship_address,
		       financial_year, accounting_period, created_at
		FROM orders
	`
	args := []any{}
	if channel != "" {
		query += " WHERE channel = $1"
		args = append(args, channel)
	}
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT %d", limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.InvoiceNumber, &o.Channel, &o.CustomerID, &o.Status,
			&o.Subtotal, &o.Discount, &o.CouponDiscount, &o.Shipping, &o.CGST, &o.SGST, &o.IGST, &o.Total,
			&o.GSTType, &o.PaymentMethod, &o.PaymentStatus, &o.PaymentReference, &o.ShipAddress,
			&o.FinancialYear, &o.AccountingPeriod, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
