package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	service := NewService("test-secret", 15*time.Minute)
	userID := uuid.New()

	token, err := service.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := service.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.Type != TokenTypeAccess {
		t.Fatalf("expected access token type, got %s", claims.Type)
	}
}

func TestExpiredToken(t *testing.T) {
	service := NewService("test-secret", -time.Minute)

	token, err := service.GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := service.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecret(t *testing.T) {
	token, err := NewService("secret-a", 15*time.Minute).GenerateAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewService("secret-b", 15*time.Minute).ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGarbageToken(t *testing.T) {
	service := NewService("test-secret", 15*time.Minute)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := service.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}
