package credit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Service defines the credit ledger operations exposed to other domains.
type Service interface {
	// EnsureAccount provisions the account row (with signup allowance) if missing
	EnsureAccount(ctx context.Context, userID uuid.UUID) error

	// GetBalance returns the current balance; 0 when the account is unknown
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)

	// GetSummary returns balance plus lifetime purchased credits
	GetSummary(ctx context.Context, userID uuid.UUID) (*Account, error)

	// Add credits the account and returns the new balance
	Add(ctx context.Context, userID uuid.UUID, amount int, txType TxType, description string, relatedID *string) (int, error)

	// Deduct debits the account; ErrInsufficientCredits when balance < amount
	Deduct(ctx context.Context, userID uuid.UUID, amount int, description string, relatedID *string) (int, error)

	// HasSufficient reports whether the balance covers the required amount.
	// An exactly equal balance is sufficient.
	HasSufficient(ctx context.Context, userID uuid.UUID, required int) (bool, error)

	// ListTransactions returns paginated ledger history, newest first
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error)
}

type service struct {
	repo *Repository
}

// NewService creates a credit service
func NewService(db *sqlx.DB) Service {
	return &service{repo: NewRepository(db)}
}

func (s *service) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	return s.repo.EnsureAccount(ctx, userID)
}

func (s *service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.GetBalance(ctx, userID)
}

func (s *service) GetSummary(ctx context.Context, userID uuid.UUID) (*Account, error) {
	if err := s.repo.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.GetAccount(ctx, userID)
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, amount int, txType TxType, description string, relatedID *string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.Add(ctx, userID, amount, txType, description, relatedID)
}

func (s *service) Deduct(ctx context.Context, userID uuid.UUID, amount int, description string, relatedID *string) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.repo.Deduct(ctx, userID, amount, description, relatedID)
}

func (s *service) HasSufficient(ctx context.Context, userID uuid.UUID, required int) (bool, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= required, nil
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, userID, Pagination{Limit: limit, Offset: offset})
}
