package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rancho/rancho-credits-api/internal/domain/catalog"
	"github.com/rancho/rancho-credits-api/internal/domain/credit"
	"github.com/rancho/rancho-credits-api/internal/pkg/razorpay"
)

const verifyLockTTL = 30 * time.Second

// OrderCreator creates orders at the payment provider.
type OrderCreator interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*razorpay.Order, error)
}

// PackageStore reads the credit package catalog.
type PackageStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Package, error)
}

// CreditLedger is the slice of the credit service purchases need.
type CreditLedger interface {
	EnsureAccount(ctx context.Context, userID uuid.UUID) error
	Add(ctx context.Context, userID uuid.UUID, amount int, txType credit.TxType, description string, relatedID *string) (int, error)
}

// Service implements order initiation and callback verification.
type Service struct {
	repo     *Repository
	packages PackageStore
	credits  CreditLedger
	orders   OrderCreator
	redis    *redis.Client // optional; serializes concurrent verifications per order
	secret   string        // Razorpay key secret, shared with the signature scheme
}

// NewService creates payment service
func NewService(repo *Repository, packages PackageStore, credits CreditLedger, orders OrderCreator, redisClient *redis.Client, keySecret string) *Service {
	return &Service{
		repo:     repo,
		packages: packages,
		credits:  credits,
		orders:   orders,
		redis:    redisClient,
		secret:   keySecret,
	}
}

// InitiateResult is returned to the client to open the provider checkout.
type InitiateResult struct {
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"` // smallest currency unit
	Currency    string `json:"currency"`
	PackageName string `json:"packageName"`
	Credits     int    `json:"credits"`
}

// InitiatePurchase validates the package, creates a provider order and records
// the payment transaction in state created.
func (s *Service) InitiatePurchase(ctx context.Context, userID, packageID uuid.UUID) (*InitiateResult, error) {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, catalog.ErrPackageNotFound) {
			return nil, ErrInvalidPackage
		}
		return nil, err
	}
	if !pkg.IsActive {
		return nil, ErrInvalidPackage
	}

	// The payment row references the account row; a first purchase may arrive
	// before any balance read provisioned it.
	if err := s.credits.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("rcpt_%d", time.Now().UnixMilli())
	order, err := s.orders.CreateOrder(ctx, pkg.PriceInSubunits(), pkg.Currency, receipt, map[string]interface{}{
		"packageId": pkg.ID.String(),
		"userId":    userID.String(),
		"credits":   fmt.Sprintf("%d", pkg.Credits),
	})
	if err != nil {
		return nil, err
	}

	tx := &Transaction{
		UserID:          userID,
		PackageID:       pkg.ID,
		RazorpayOrderID: order.ID,
		Amount:          pkg.Price,
		Currency:        pkg.Currency,
		Status:          StatusCreated,
	}
	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	return &InitiateResult{
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		PackageName: pkg.Name,
		Credits:     pkg.Credits,
	}, nil
}

// VerifyResult is returned once credits were awarded.
type VerifyResult struct {
	CreditsAdded int    `json:"creditsAdded"`
	NewBalance   int    `json:"newBalance"`
	PackageName  string `json:"packageName"`
}

// VerifyPurchase checks the callback signature and awards the package credits
// exactly once. The conditional completed transition is the final idempotency
// authority; the redis lock (when configured) keeps concurrent callbacks from
// reaching the ledger at the same time.
func (s *Service) VerifyPurchase(ctx context.Context, userID uuid.UUID, orderID, paymentID, signature string) (*VerifyResult, error) {
	expected := razorpay.ComputeSignature(orderID, paymentID, s.secret)
	if !razorpay.VerifySignature(expected, signature) {
		if err := s.repo.MarkFailed(ctx, orderID, paymentID); err != nil {
			log.Error().Err(err).Str("order_id", orderID).Msg("failed to mark payment transaction failed")
		}
		return nil, ErrSignatureMismatch
	}

	release, err := s.acquireVerifyLock(ctx, orderID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ErrForbidden
	}
	if tx.IsCompleted() {
		return nil, ErrAlreadyProcessed
	}

	pkg, err := s.packages.GetByID(ctx, tx.PackageID)
	if err != nil {
		return nil, err
	}

	relatedID := tx.ID.String()
	newBalance, err := s.credits.Add(ctx, userID, pkg.Credits, credit.TxTypePurchase, "Purchased "+pkg.Name, &relatedID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Complete(ctx, orderID, paymentID, signature, pkg.Credits); err != nil {
		// The transition raced another completion despite the lock. Credits
		// were added above, so this must surface loudly for reconciliation.
		log.Error().Err(err).Str("order_id", orderID).Int("credits", pkg.Credits).
			Msg("payment completion transition failed after crediting")
		return nil, err
	}

	return &VerifyResult{
		CreditsAdded: pkg.Credits,
		NewBalance:   newBalance,
		PackageName:  pkg.Name,
	}, nil
}

// History returns the user's payment attempts, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// acquireVerifyLock takes a short-lived redis lock keyed on the order id.
// Without redis the lock degrades to a no-op and the conditional status
// transition alone guards idempotency.
func (s *Service) acquireVerifyLock(ctx context.Context, orderID string) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}

	key := "payment:verify:" + orderID
	ok, err := s.redis.SetNX(ctx, key, "1", verifyLockTTL).Result()
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Msg("verify lock unavailable, proceeding without it")
		return func() {}, nil
	}
	if !ok {
		return nil, ErrVerifyInProgress
	}

	return func() {
		if err := s.redis.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("failed to release verify lock")
		}
	}, nil
}
