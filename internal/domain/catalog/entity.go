package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Package is a purchasable credit bundle. Seeded once; read-only at runtime.
type Package struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Credits   int             `db:"credits" json:"credits"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Currency  string          `db:"currency" json:"currency"`
	IsActive  bool            `db:"is_active" json:"isActive"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// PriceInSubunits returns the price in the smallest currency unit (paise for
// INR), the amount payment providers expect.
func (p *Package) PriceInSubunits() int64 {
	return p.Price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
