package credit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/rancho/rancho-credits-api/internal/domain/credit"
	"github.com/rancho/rancho-credits-api/internal/middleware"
	"github.com/rancho/rancho-credits-api/internal/pkg/pricing"
)

// fakeCreditService answers balance checks in memory.
type fakeCreditService struct {
	balance int
	err     error
}

func (f *fakeCreditService) EnsureAccount(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (f *fakeCreditService) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return f.balance, f.err
}

func (f *fakeCreditService) GetSummary(ctx context.Context, userID uuid.UUID) (*credit.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &credit.Account{UserID: userID, Balance: f.balance}, nil
}

func (f *fakeCreditService) Add(ctx context.Context, userID uuid.UUID, amount int, txType credit.TxType, description string, relatedID *string) (int, error) {
	return 0, nil
}

func (f *fakeCreditService) Deduct(ctx context.Context, userID uuid.UUID, amount int, description string, relatedID *string) (int, error) {
	return 0, nil
}

func (f *fakeCreditService) HasSufficient(ctx context.Context, userID uuid.UUID, required int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.balance >= required, nil
}

func (f *fakeCreditService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]credit.Transaction, error) {
	return []credit.Transaction{}, f.err
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestVerifyGenerationRequiresAuth(t *testing.T) {
	h := credit.NewHandler(&fakeCreditService{}, pricing.Default())

	req := httptest.NewRequest(http.MethodPost, "/credits/verify", bytes.NewReader([]byte(`{"type":"video"}`)))
	rec := httptest.NewRecorder()
	h.VerifyGeneration(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestVerifyGenerationRejectsUnknownType(t *testing.T) {
	h := credit.NewHandler(&fakeCreditService{balance: 100}, pricing.Default())

	for _, body := range []string{`{"type":"image"}`, `{}`, `{"type":""}`} {
		rec := httptest.NewRecorder()
		h.VerifyGeneration(rec, authedRequest(http.MethodPost, "/credits/verify", []byte(body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}

		var resp struct {
			Error struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			} `json:"error"`
		}
		requireNoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		if resp.Error.Code != "BAD_REQUEST" || resp.Error.Details["type"] == "" {
			t.Fatalf("body %s: expected field details in error, got %+v", body, resp.Error)
		}
	}
}

func TestVerifyGenerationReportsCost(t *testing.T) {
	h := credit.NewHandler(&fakeCreditService{balance: 7}, pricing.Default())

	rec := httptest.NewRecorder()
	h.VerifyGeneration(rec, authedRequest(http.MethodPost, "/credits/verify", []byte(`{"type":"video"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			HasEnoughCredits bool   `json:"hasEnoughCredits"`
			RequiredCredits  int    `json:"requiredCredits"`
			Type             string `json:"type"`
		} `json:"data"`
	}
	requireNoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	if !resp.Success || !resp.Data.HasEnoughCredits || resp.Data.RequiredCredits != 5 || resp.Data.Type != "video" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Balance 7 does not cover a 10-credit game
	rec = httptest.NewRecorder()
	h.VerifyGeneration(rec, authedRequest(http.MethodPost, "/credits/verify", []byte(`{"type":"game"}`)))
	requireNoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	if resp.Data.HasEnoughCredits || resp.Data.RequiredCredits != 10 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestVerifyGenerationFailsClosed(t *testing.T) {
	h := credit.NewHandler(&fakeCreditService{err: credit.ErrInternal}, pricing.Default())

	rec := httptest.NewRecorder()
	h.VerifyGeneration(rec, authedRequest(http.MethodPost, "/credits/verify", []byte(`{"type":"video"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data struct {
			HasEnoughCredits bool `json:"hasEnoughCredits"`
		} `json:"data"`
	}
	requireNoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	if resp.Data.HasEnoughCredits {
		t.Fatal("balance check outage must report insufficient credits")
	}
}

func TestGetBalanceEnvelope(t *testing.T) {
	h := credit.NewHandler(&fakeCreditService{balance: 42}, pricing.Default())

	rec := httptest.NewRecorder()
	h.GetBalance(rec, authedRequest(http.MethodGet, "/credits", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Credits               int `json:"credits"`
			TotalCreditsPurchased int `json:"totalCreditsPurchased"`
		} `json:"data"`
	}
	requireNoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	if !resp.Success || resp.Data.Credits != 42 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
