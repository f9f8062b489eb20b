package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceService allocates invoice numbers from the active sequence
// configuration. Allocation locks the counter row, so concurrent allocators
// in the same or different transactions always observe distinct values.
type SequenceService interface {
	// AllocateTx formats and returns the next invoice number inside the
	// caller's transaction. When no active sequence configuration exists it
	// returns ("", nil): invoice numbering is best-effort metadata and its
	// absence must not fail the order.
	AllocateTx(ctx context.Context, tx pgx.Tx, now time.Time) (string, error)
}

type sequenceService struct {
	pool *pgxpool.Pool
}

func NewSequenceService(pool *pgxpool.Pool) SequenceService {
	return &sequenceService{pool: pool}
}

func (s *sequenceService) AllocateTx(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	var (
		id, padWidth, fyStartMonth int
		prefix                     string
		pinnedFY                   *string
	)
	err := tx.QueryRow(ctx, `
		SELECT id, prefix, pad_width, fy_start_month, pinned_fy
		FROM invoice_sequences
		WHERE is_active = true
		ORDER BY id
		LIMIT 1
		FOR UPDATE
	`).Scan(&id, &prefix, &padWidth, &fyStartMonth, &pinnedFY)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock invoice sequence: %w", err)
	}

	var next int64
	err = tx.QueryRow(ctx,
		"UPDATE invoice_sequences SET last_number = last_number + 1 WHERE id = $1 RETURNING last_number",
		id,
	).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("failed to increment invoice sequence: %w", err)
	}

	fy := FinancialYearLabel(now, fyStartMonth)
	if pinnedFY != nil && *pinnedFY != "" {
		fy = *pinnedFY
	}

	return fmt.Sprintf("%s-%s-%0*d", prefix, fy, padWidth, next), nil
}

// FinancialYearLabel computes the "2025-26" style financial-year label for a
// point in time. The year rolls over when the month reaches startMonth
// (April for the Indian financial year).
func FinancialYearLabel(t time.Time, startMonth int) string {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 4
	}
	startYear := t.Year()
	if int(t.Month()) < startMonth {
		startYear--
	}
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// AccountingPeriod is the calendar-month reporting partition tag, "2025-09".
func AccountingPeriod(t time.Time) string {
	return t.Format("2006-01")
}
