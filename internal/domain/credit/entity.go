package credit

import (
	"time"

	"github.com/google/uuid"
)

// TxType defines supported credit transaction types.
type TxType string

const (
	TxTypePurchase TxType = "purchase"
	TxTypeUsage    TxType = "usage"
	TxTypeBonus    TxType = "bonus"
)

// Credits granted to every new account.
const SignupAllowance = 100

// Account is the per-user balance row.
type Account struct {
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Balance        int       `db:"balance" json:"credits"`
	TotalPurchased int       `db:"total_purchased" json:"totalCreditsPurchased"`
	UpdatedAt      time.Time `db:"updated_at" json:"-"`
}

// Transaction is an immutable ledger row. Amount is positive for credits and
// negative for debits; BalanceAfter is the checkpoint balance once the row was
// applied.
type Transaction struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"-"`
	Type         TxType    `db:"tx_type" json:"type"`
	Amount       int       `db:"amount" json:"amount"`
	Description  string    `db:"description" json:"description"`
	RelatedID    *string   `db:"related_id" json:"relatedId,omitempty"`
	BalanceAfter int       `db:"balance_after" json:"balanceAfter"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}
