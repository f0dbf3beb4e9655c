package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const queryTimeout = 3 * time.Second

// Repository provides read access to the credit package catalog.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns purchasable packages ordered by ascending credit quantity.
func (r *Repository) ListActive(ctx context.Context) ([]Package, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	packages := make([]Package, 0)
	err := r.db.SelectContext(ctx2, &packages, `
		SELECT id, name, credits, price, currency, is_active, created_at
		FROM credit_packages
		WHERE is_active = true
		ORDER BY credits ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list packages", ErrInternal)
	}
	return packages, nil
}

// GetByID returns a package regardless of its active flag; callers decide
// whether an inactive package is acceptable.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Package, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var pkg Package
	err := r.db.GetContext(ctx2, &pkg, `
		SELECT id, name, credits, price, currency, is_active, created_at
		FROM credit_packages
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("%w: get package", ErrInternal)
	}
	return &pkg, nil
}

// Seed inserts the default packages when the catalog is empty. Run once from
// startup behind a config flag, never on the request path.
func (r *Repository) Seed(ctx context.Context) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	if err := r.db.GetContext(ctx2, &count, `SELECT COUNT(*) FROM credit_packages`); err != nil {
		return fmt.Errorf("%w: count packages", ErrInternal)
	}
	if count > 0 {
		return nil
	}

	defaults := []struct {
		name    string
		credits int
		price   string
	}{
		{"Starter Pack", 50, "99.00"},
		{"Popular Pack", 150, "249.00"},
		{"Pro Pack", 350, "499.00"},
		{"Business Pack", 1000, "1799.00"},
	}

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	for _, d := range defaults {
		price, err := decimal.NewFromString(d.price)
		if err != nil {
			return fmt.Errorf("%w: bad seed price %s", ErrInternal, d.price)
		}
		_, err = tx.ExecContext(ctx2, `
			INSERT INTO credit_packages (id, name, credits, price, currency, is_active)
			VALUES (gen_random_uuid(), $1, $2, $3, 'INR', true)
		`, d.name, d.credits, price)
		if err != nil {
			return fmt.Errorf("%w: insert package", ErrInternal)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}

	log.Info().Int("packages", len(defaults)).Msg("Seeded credit package catalog")
	return nil
}
