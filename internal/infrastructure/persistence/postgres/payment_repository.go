package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
		id, payment_reference, amount::text, currency, status, payment_method,
		gateway_provider, gateway_transaction_id, customer_id, merchant_id,
		description, failure_reason, redirect_url, created_at, updated_at, completed_at, version`

type PaymentRepository struct {
	db *DB
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment at version 1. A reused payment reference is
// reported as domain.ErrDuplicateReference.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, payment_reference, amount, currency, status, payment_method,
			gateway_provider, gateway_transaction_id, customer_id, merchant_id,
			description, failure_reason, redirect_url, created_at, updated_at, completed_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1)
	`

	p := toDBModel(payment)
	_, err := r.db.Pool.Exec(ctx, query,
		p.ID,
		p.PaymentReference,
		p.Amount,
		p.Currency,
		p.Status,
		p.PaymentMethod,
		p.GatewayProvider,
		p.GatewayTransactionID,
		p.CustomerID,
		p.MerchantID,
		p.Description,
		p.FailureReason,
		p.RedirectURL,
		p.CreatedAt,
		p.UpdatedAt,
		p.CompletedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateReferenceError(payment.Reference)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	payment.Version = 1
	return nil
}

// Update writes the payment's mutable fields if nobody else has changed the
// row since it was read, then bumps the version.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1,
			gateway_transaction_id = $2,
			failure_reason = $3,
			redirect_url = $4,
			updated_at = $5,
			completed_at = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
	`

	p := toDBModel(payment)
	results, err := r.db.Pool.Exec(ctx, query,
		p.Status,
		p.GatewayTransactionID,
		p.FailureReason,
		p.RedirectURL,
		p.UpdatedAt,
		p.CompletedAt,
		p.ID,
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if results.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, payment.ID); err != nil {
			return err
		}
		return domain.ErrConcurrentModification
	}

	payment.Version++
	return nil
}

// FindByID retrieves a payment
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewPaymentNotFoundError(id)
	}

	query := `SELECT` + paymentColumns + `
		FROM payments WHERE id = $1
	`

	row := r.db.Pool.QueryRow(ctx, query, id)
	return scanPayment(row, id)
}

// FindByReference retrieves a payment by the caller's reference
func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE payment_reference = $1
	`

	row := r.db.Pool.QueryRow(ctx, query, reference)
	return scanPayment(row, reference)
}

func (r *PaymentRepository) FindByCustomerID(ctx context.Context, customerID string, limit, offset int) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryPayments(ctx, "customer_id", query, customerID, limit, offset)
}

func (r *PaymentRepository) FindByMerchantID(ctx context.Context, merchantID string, limit, offset int) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryPayments(ctx, "merchant_id", query, merchantID, limit, offset)
}

func (r *PaymentRepository) FindByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryPayments(ctx, "status", query, string(status), limit, offset)
}

// FindStalePending finds PENDING payments that a processor accepted but that
// have not changed since updatedBefore, oldest first.
func (r *PaymentRepository) FindStalePending(ctx context.Context, updatedBefore time.Time, limit int) ([]*domain.Payment, error) {
	query := `SELECT` + paymentColumns + `
		FROM payments
		WHERE status = 'PENDING'
		  AND gateway_transaction_id IS NOT NULL
		  AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`
	return r.queryPayments(ctx, "stale pending", query, updatedBefore, limit)
}

func (r *PaymentRepository) queryPayments(ctx context.Context, by, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments by %s: %w", by, err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Payment, error) {
		m, err := scanModel(row)
		if err != nil {
			return nil, err
		}
		return toDomainModel(m)
	})
	if err != nil {
		return nil, fmt.Errorf("scan payments by %s: %w", by, err)
	}
	return results, nil
}

// scanPayment converts a single row into a domain Payment, reporting a missing
// row as domain.ErrPaymentNotFound.
func scanPayment(row pgx.Row, key string) (*domain.Payment, error) {
	m, err := scanModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPaymentNotFoundError(key)
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toDomainModel(m)
}

func scanModel(row pgx.Row) (PaymentModel, error) {
	var m PaymentModel
	err := row.Scan(
		&m.ID, &m.PaymentReference, &m.Amount, &m.Currency, &m.Status, &m.PaymentMethod,
		&m.GatewayProvider, &m.GatewayTransactionID, &m.CustomerID, &m.MerchantID,
		&m.Description, &m.FailureReason, &m.RedirectURL, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt, &m.Version,
	)
	return m, err
}
