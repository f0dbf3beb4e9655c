package credit

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

// Repository provides credit ledger and balance operations. Balance mutations
// push the floor check into the UPDATE itself so concurrent debits cannot
// overdraw an account, and the ledger row is written in the same transaction
// with the RETURNING balance as its checkpoint.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureAccount creates the account row with the signup allowance if it does
// not exist yet. The allowance is recorded as a bonus ledger entry so replaying
// the ledger still reproduces the balance.
func (r *Repository) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx2, `
		INSERT INTO credit_accounts (user_id, balance, total_purchased)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, SignupAllowance)
	if err != nil {
		return fmt.Errorf("%w: insert account", ErrInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected", ErrInternal)
	}
	if rows == 0 {
		// Account already exists, nothing to record.
		return nil
	}

	if err := r.insertLedger(ctx2, tx, userID, SignupAllowance, TxTypeBonus, "Signup bonus", nil, SignupAllowance); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return nil
}

// GetBalance returns the current balance, or 0 when the account row is missing.
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var balance int
	err := r.db.GetContext(ctx2, &balance, `SELECT balance FROM credit_accounts WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: get balance", ErrInternal)
	}
	return balance, nil
}

// GetAccount returns the full account row.
func (r *Repository) GetAccount(ctx context.Context, userID uuid.UUID) (*Account, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var account Account
	err := r.db.GetContext(ctx2, &account, `
		SELECT user_id, balance, total_purchased, updated_at
		FROM credit_accounts
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: get account", ErrInternal)
	}
	return &account, nil
}

// Add credits the account and appends a ledger row. Purchases also bump the
// lifetime purchased counter. Returns the new balance.
func (r *Repository) Add(ctx context.Context, userID uuid.UUID, amount int, txType TxType, description string, relatedID *string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	var newBalance int
	err = tx.QueryRowContext(ctx2, `
		UPDATE credit_accounts
		SET balance = balance + $2,
		    total_purchased = total_purchased + CASE WHEN $3 = 'purchase' THEN $2 ELSE 0 END,
		    updated_at = now()
		WHERE user_id = $1
		RETURNING balance
	`, userID, amount, string(txType)).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("%w: update balance", ErrInternal)
	}

	if err := r.insertLedger(ctx2, tx, userID, amount, txType, description, relatedID, newBalance); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return newBalance, nil
}

// Deduct debits the account if the balance covers the amount, appending a
// negative-amount usage row. The WHERE clause carries the floor check, so two
// concurrent deductions can never both drain the same credits.
func (r *Repository) Deduct(ctx context.Context, userID uuid.UUID, amount int, description string, relatedID *string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	var newBalance int
	err = tx.QueryRowContext(ctx2, `
		UPDATE credit_accounts
		SET balance = balance - $2, updated_at = now()
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance
	`, userID, amount).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, r.classifyDeductFailure(ctx2, userID)
		}
		return 0, fmt.Errorf("%w: update balance", ErrInternal)
	}

	if err := r.insertLedger(ctx2, tx, userID, -amount, TxTypeUsage, description, relatedID, newBalance); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return newBalance, nil
}

// classifyDeductFailure distinguishes a missing account from an insufficient
// balance after the conditional update matched no row.
func (r *Repository) classifyDeductFailure(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM credit_accounts WHERE user_id = $1)`, userID)
	if err != nil {
		return fmt.Errorf("%w: check account", ErrInternal)
	}
	if !exists {
		return ErrAccountNotFound
	}
	return ErrInsufficientCredits
}

// ListTransactions returns the ledger newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &transactions, `
		SELECT id, user_id, tx_type, amount, description, related_id, balance_after, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions", ErrInternal)
	}
	return transactions, nil
}

func (r *Repository) insertLedger(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount int, txType TxType, description string, relatedID *string, balanceAfter int) error {
	if description == "" {
		description = "credit balance adjustment"
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_transactions (id, user_id, tx_type, amount, description, related_id, balance_after)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
	`, userID, string(txType), amount, description, relatedID, balanceAfter)
	if err != nil {
		return fmt.Errorf("%w: insert transaction", ErrInternal)
	}
	return nil
}
