package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestVerifier(t *testing.T, cfg config.AuthConfig) Verifier {
	t.Helper()
	verifier, err := NewVerifier(config.Config{Auth: cfg}, zap.NewNop())
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	return verifier
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestVerifyExtractsClaims(t *testing.T) {
	verifier := newTestVerifier(t, config.AuthConfig{HS256Secret: testSecret})

	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":            "civic|abc123",
		"iss":            "https://auth.civic.com",
		"aud":            "chainvoice",
		"exp":            time.Now().Add(time.Hour).Unix(),
		"email":          "alice@example.com",
		"email_verified": true,
		"wallet_address": "0xAbCdEf",
	})

	claims, err := verifier.Verify(context.Background(), raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "civic|abc123" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Email != "alice@example.com" || !claims.EmailVerified {
		t.Fatalf("email claims = %q verified=%v", claims.Email, claims.EmailVerified)
	}
	if claims.WalletAddress != "0xAbCdEf" {
		t.Fatalf("wallet = %q", claims.WalletAddress)
	}
	if len(claims.Audience) != 1 || claims.Audience[0] != "chainvoice" {
		t.Fatalf("audience = %v", claims.Audience)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := newTestVerifier(t, config.AuthConfig{HS256Secret: testSecret})

	raw := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "civic|abc123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := verifier.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRequiresExpiry(t *testing.T) {
	verifier := newTestVerifier(t, config.AuthConfig{HS256Secret: testSecret})

	raw := signToken(t, testSecret, jwt.MapClaims{"sub": "civic|abc123"})
	if _, err := verifier.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing exp, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := newTestVerifier(t, config.AuthConfig{HS256Secret: testSecret})

	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "civic|abc123",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	if _, err := verifier.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsEmptySubject(t *testing.T) {
	verifier := newTestVerifier(t, config.AuthConfig{HS256Secret: testSecret})

	raw := signToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := verifier.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}

func TestVerifyChecksIssuerAndAudience(t *testing.T) {
	verifier := newTestVerifier(t, config.AuthConfig{
		HS256Secret: testSecret,
		Issuer:      "https://auth.civic.com",
		Audience:    "chainvoice",
	})

	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "civic|abc123",
		"iss": "https://rogue.example.com",
		"aud": "chainvoice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := verifier.Verify(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong issuer, got %v", err)
	}
}

func TestVerifyMissingToken(t *testing.T) {
	verifier := newTestVerifier(t, config.AuthConfig{HS256Secret: testSecret})
	if _, err := verifier.Verify(context.Background(), "  "); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestNewVerifierRejectsUnknownMode(t *testing.T) {
	if _, err := NewVerifier(config.Config{Auth: config.AuthConfig{Mode: "es512"}}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unsupported mode")
	}
}
