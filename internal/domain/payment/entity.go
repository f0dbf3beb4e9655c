package payment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents payment transaction status.
//
//	created --(valid callback)--> completed   terminal, credits awarded once
//	created --(bad signature)---> failed      terminal
type Status string

const (
	StatusCreated   Status = "created"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Transaction tracks one external payment attempt from order creation through
// provider verification.
type Transaction struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	UserID            uuid.UUID       `db:"user_id" json:"-"`
	PackageID         uuid.UUID       `db:"package_id" json:"packageId"`
	RazorpayOrderID   string          `db:"razorpay_order_id" json:"orderId"`
	RazorpayPaymentID sql.NullString  `db:"razorpay_payment_id" json:"-"`
	RazorpaySignature sql.NullString  `db:"razorpay_signature" json:"-"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Currency          string          `db:"currency" json:"currency"`
	Status            Status          `db:"status" json:"status"`
	CreditsAwarded    int             `db:"credits_awarded" json:"creditsAwarded"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	CompletedAt       sql.NullTime    `db:"completed_at" json:"-"`
}

// IsCompleted reports whether credits were already awarded for this attempt.
func (t *Transaction) IsCompleted() bool {
	return t.Status == StatusCompleted
}
