package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerService writes the best-effort financial record for committed orders.
// A failed ledger write never invalidates the order; the dispatcher retries it.
type LedgerService interface {
	RecordSale(ctx context.Context, o *Order) error
	Entries(ctx context.Context, financialYear string, limit int) ([]LedgerEntry, error)
}

type ledgerService struct {
	pool *pgxpool.Pool
}

func NewLedgerService(pool *pgxpool.Pool) LedgerService {
	return &ledgerService{pool: pool}
}

func (s *ledgerService) RecordSale(ctx context.Context, o *Order) error {
	narration := fmt.Sprintf("Sale %s via %s", o.OrderNumber, o.Channel)
	if o.InvoiceNumber != nil {
		narration = fmt.Sprintf("Sale %s (invoice %s) via %s", o.OrderNumber, *o.InvoiceNumber, o.Channel)
	}

	// One entry per order: re-dispatch after a partial failure must not
	// double-book the sale.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ledger_entries (order_id, entry_type, amount, payment_method, financial_year, narration)
		SELECT $1, 'sale', $2, $3, $4, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM ledger_entries WHERE order_id = $1 AND entry_type = 'sale'
		)
	`, o.ID, o.Total, o.PaymentMethod, o.FinancialYear, narration)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for order %d: %w", o.ID, err)
	}
	return nil
}

func (s *ledgerService) Entries(ctx context.Context, financialYear string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, entry_type, amount, payment_method, financial_year, narration, created_at
		FROM ledger_entries
		WHERE ($1 = '' OR financial_year = $1)
		ORDER BY id DESC
		LIMIT $2
	`, financialYear, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.EntryType, &e.Amount, &e.PaymentMethod,
			&e.FinancialYear, &e.Narration, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
