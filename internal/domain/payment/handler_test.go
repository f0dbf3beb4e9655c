package payment_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/rancho/rancho-credits-api/internal/domain/payment"
	"github.com/rancho/rancho-credits-api/internal/middleware"
)

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestCreateOrderValidation(t *testing.T) {
	h := payment.NewHandler(nil)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank id", `{"packageId":""}`},
		{"malformed id", `{"packageId":"not-a-uuid"}`},
		{"invalid json", `{`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.CreateOrder(rec, authedRequest(http.MethodPost, "/payments", []byte(tc.body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	h := payment.NewHandler(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewReader([]byte(`{"packageId":"x"}`)))
	h.CreateOrder(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestVerifyValidation(t *testing.T) {
	h := payment.NewHandler(nil)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing payment id", `{"razorpay_order_id":"order_1","razorpay_signature":"sig"}`},
		{"missing signature", `{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1"}`},
		{"missing order id", `{"razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.Verify(rec, authedRequest(http.MethodPost, "/payments/verify", []byte(tc.body)))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestVerifyRequiresAuth(t *testing.T) {
	h := payment.NewHandler(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/verify", bytes.NewReader([]byte(`{}`)))
	h.Verify(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
