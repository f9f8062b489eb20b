package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CustomerService reads customer profiles/addresses for checkout and applies
// the post-commit purchase analytics bump.
type CustomerService interface {
	GetByKey(ctx context.Context, externalKey string) (*Customer, error)

	// ResolveAddress returns the delivery address for an order: the saved
	// address when addressID is set, otherwise the customer's profile address.
	// Incomplete addresses fail with ErrIncompleteAddress.
	ResolveAddress(ctx context.Context, customerID int, addressID *int) (*Address, error)

	// BumpAnalytics increments order_count, adds total to lifetime_spend and
	// stamps last_order_at. Best-effort side effect; safe to retry.
	BumpAnalytics(ctx context.Context, customerID int, total decimal.Decimal) error
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

func (s *customerService) GetByKey(ctx context.Context, externalKey string) (*Customer, error) {
	var c Customer
	err := s.pool.QueryRow(ctx, `
		SELECT id, external_key, name, email, phone, state_code, address_line, city, pincode,
		       order_count, lifetime_spend, last_order_at
		FROM customers
		WHERE external_key = $1
	`, externalKey).Scan(
		&c.ID, &c.ExternalKey, &c.Name, &c.Email, &c.Phone, &c.StateCode,
		&c.AddressLine, &c.City, &c.Pincode,
		&c.OrderCount, &c.LifetimeSpend, &c.LastOrderAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %s not found", externalKey)
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", externalKey, err)
	}
	return &c, nil
}

func (s *customerService) ResolveAddress(ctx context.Context, customerID int, addressID *int) (*Address, error) {
	if addressID != nil {
		var a Address
		err := s.pool.QueryRow(ctx, `
			SELECT id, customer_id, label, address_line, city, state_code, pincode
			FROM customer_addresses
			WHERE id = $1 AND customer_id = $2
		`, *addressID, customerID).Scan(
			&a.ID, &a.CustomerID, &a.Label, &a.AddressLine, &a.City, &a.StateCode, &a.Pincode,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrIncompleteAddress
			}
			return nil, fmt.Errorf("failed to fetch address %d: %w", *addressID, err)
		}
		if !a.complete() {
			return nil, ErrIncompleteAddress
		}
		return &a, nil
	}

	// Fallback: the profile address.
	var a Address
	err := s.pool.QueryRow(ctx,
		"SELECT id, address_line, city, state_code, pincode FROM customers WHERE id = $1",
		customerID,
	).Scan(&a.CustomerID, &a.AddressLine, &a.City, &a.StateCode, &a.Pincode)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile address for customer %d: %w", customerID, err)
	}
	a.Label = "profile"
	if !a.complete() {
		return nil, ErrIncompleteAddress
	}
	return &a, nil
}

func (s *customerService) BumpAnalytics(ctx context.Context, customerID int, total decimal.Decimal) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE customers
		SET order_count = order_count + 1,
		    lifetime_spend = lifetime_spend + $1,
		    last_order_at = NOW()
		WHERE id = $2
	`, total, customerID)
	if err != nil {
		return fmt.Errorf("failed to update purchase analytics for customer %d: %w", customerID, err)
	}
	return nil
}
