package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository provides payment transaction persistence.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new transaction in state created. The unique constraint on
// razorpay_order_id makes duplicate provider orders impossible to record.
func (r *Repository) Create(ctx context.Context, t *Transaction) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusCreated
	}

	_, err := r.db.ExecContext(ctx2, `
		INSERT INTO payment_transactions (id, user_id, package_id, razorpay_order_id, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.UserID, t.PackageID, t.RazorpayOrderID, t.Amount, t.Currency, string(t.Status))
	if err != nil {
		return fmt.Errorf("%w: insert payment transaction", ErrInternal)
	}
	return nil
}

// GetByOrderID loads a transaction by the provider's order id.
func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t Transaction
	err := r.db.GetContext(ctx2, &t, `
		SELECT id, user_id, package_id, razorpay_order_id, razorpay_payment_id, razorpay_signature,
		       amount, currency, status, credits_awarded, created_at, completed_at
		FROM payment_transactions
		WHERE razorpay_order_id = $1
	`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: get payment transaction", ErrInternal)
	}
	return &t, nil
}

// MarkFailed records a failed verification so the transaction is not left
// permanently in created. Completed transactions are never downgraded.
func (r *Repository) MarkFailed(ctx context.Context, orderID, paymentID string) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, `
		UPDATE payment_transactions
		SET status = $2, razorpay_payment_id = NULLIF($3, '')
		WHERE razorpay_order_id = $1 AND status <> $4
	`, orderID, string(StatusFailed), paymentID, string(StatusCompleted))
	if err != nil {
		return fmt.Errorf("%w: mark payment failed", ErrInternal)
	}
	return nil
}

// Complete transitions the transaction to completed exactly once. The status
// guard in the WHERE clause is the idempotency authority: a second call matches
// no row and returns ErrAlreadyProcessed.
func (r *Repository) Complete(ctx context.Context, orderID, paymentID, signature string, creditsAwarded int) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx2, `
		UPDATE payment_transactions
		SET status = $2,
		    razorpay_payment_id = $3,
		    razorpay_signature = $4,
		    credits_awarded = $5,
		    completed_at = now()
		WHERE razorpay_order_id = $1 AND status <> $2
	`, orderID, string(StatusCompleted), paymentID, signature, creditsAwarded)
	if err != nil {
		return fmt.Errorf("%w: complete payment transaction", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		return ErrAlreadyProcessed
	}
	return nil
}

// ListByUser returns the user's payment attempts, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &transactions, `
		SELECT id, user_id, package_id, razorpay_order_id, razorpay_payment_id, razorpay_signature,
		       amount, currency, status, credits_awarded, created_at, completed_at
		FROM payment_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list payment transactions", ErrInternal)
	}
	return transactions, nil
}
