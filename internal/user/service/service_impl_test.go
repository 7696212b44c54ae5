package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"github.com/chainvoice/chainvoice/internal/user/domain"
	"github.com/chainvoice/chainvoice/internal/user/repository"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	repo := repository.Provide(repository.Params{
		Client: golemdb.NewMemoryClient(),
		Clock:  clk,
		Config: config.Config{},
		Log:    zap.NewNop(),
	})
	svc := New(Params{
		Log:   zap.NewNop(),
		Clock: clk,
		Repo:  repo,
	})
	return svc, clk
}

func upsertRequest() domain.UpsertSelfRequest {
	return domain.UpsertSelfRequest{
		CivicSub:      "civic|abc123",
		CivicIssuer:   "https://auth.civic.com",
		Email:         "alice@example.com",
		EmailVerified: true,
		WalletAddress: "0xAbCdEf",
	}
}

func TestUpsertCreatesOnFirstLogin(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t)

	user, err := svc.UpsertByCivicSub(ctx, upsertRequest())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if user.Version != 1 {
		t.Fatalf("version = %d, want 1", user.Version)
	}
	if user.Role != domain.RoleUser || !user.IsActive || user.KycStatus != domain.KycNone {
		t.Fatalf("defaults not applied: %+v", user)
	}
	if user.AuthProvider != "civic" || user.WalletKind != domain.WalletEmbedded {
		t.Fatalf("provider defaults = %q / %q", user.AuthProvider, user.WalletKind)
	}
	if user.LastLoginAt == nil || !user.LastLoginAt.Equal(clk.Now().UTC()) {
		t.Fatalf("lastLoginAt = %v, want %v", user.LastLoginAt, clk.Now().UTC())
	}
}

func TestUpsertUpdatesOnRepeatLogin(t *testing.T) {
	ctx := context.Background()
	svc, clk := newTestService(t)

	first, err := svc.UpsertByCivicSub(ctx, upsertRequest())
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	clk.Advance(24 * time.Hour)
	req := upsertRequest()
	req.BusinessName = "Alice Studio"
	second, err := svc.UpsertByCivicSub(ctx, req)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("second login created a new account: %s vs %s", second.ID, first.ID)
	}
	if second.Version != 2 {
		t.Fatalf("version = %d, want 2", second.Version)
	}
	if second.BusinessName != "Alice Studio" {
		t.Fatalf("businessName = %q", second.BusinessName)
	}
	if second.LastLoginAt == nil || !second.LastLoginAt.After(*first.LastLoginAt) {
		t.Fatalf("lastLoginAt not advanced: %v vs %v", second.LastLoginAt, first.LastLoginAt)
	}
}

func TestUpsertKeepsStoredFieldsWhenRequestIsSparse(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.UpsertByCivicSub(ctx, upsertRequest()); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	sparse := domain.UpsertSelfRequest{CivicSub: "civic|abc123"}
	user, err := svc.UpsertByCivicSub(ctx, sparse)
	if err != nil {
		t.Fatalf("sparse upsert: %v", err)
	}

	if user.Email != "alice@example.com" || user.WalletAddress != "0xAbCdEf" {
		t.Fatalf("stored fields clobbered: %+v", user)
	}
	// EmailVerified only moves when the request carries an email.
	if !user.EmailVerified {
		t.Fatal("emailVerified reset by sparse request")
	}
}

func TestUpsertRejectsEmptySubject(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.UpsertByCivicSub(context.Background(), domain.UpsertSelfRequest{CivicSub: "  "}); !errors.Is(err, domain.ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestGetSelf(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, err := svc.GetSelf(ctx, "civic|nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := svc.UpsertByCivicSub(ctx, upsertRequest()); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	user, err := svc.GetSelf(ctx, "civic|abc123")
	if err != nil {
		t.Fatalf("get self: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("got %+v", user)
	}
}
