package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/entity"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"github.com/chainvoice/chainvoice/internal/user/domain"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) (domain.Repository, *clock.FakeClock) {
	t.Helper()
	clk := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	repo := Provide(Params{
		Client: golemdb.NewMemoryClient(),
		Clock:  clk,
		Config: config.Config{},
		Log:    zap.NewNop(),
	})
	return repo, clk
}

func sampleUser() *domain.User {
	return &domain.User{
		AuthProvider:    "civic",
		CivicSub:        "civic|abc123",
		Email:           "Alice@Example.com",
		EmailVerified:   true,
		WalletAddress:   "0xAbCdEf",
		WalletKind:      domain.WalletEmbedded,
		WalletOrigin:    "civic",
		Role:            domain.RoleUser,
		IsActive:        true,
		KycStatus:       domain.KycNone,
		Country:         "DE",
		BusinessName:    "Alice Studio",
		DefaultCurrency: "USDC",
		DefaultNetwork:  "base",
	}
}

func TestBuildQueryCanonicalOrder(t *testing.T) {
	verified := true
	query, err := buildQuery(domain.Filter{
		CivicSub:      "sub1",
		Email:         "Alice@Example.com",
		EmailVerified: &verified,
		Role:          domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := `type = "users" && civic_sub = "sub1" && email_lc = "alice@example.com" && email_verified_num = 1 && role = "USER"`
	if query != want {
		t.Fatalf("query = %q\nwant    %q", query, want)
	}
}

func TestNormalizeRecomputesMirrors(t *testing.T) {
	user := sampleUser()
	lastLogin := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	user.LastLoginAt = &lastLogin

	normalize(user)

	if user.EmailLc != "alice@example.com" {
		t.Fatalf("emailLc = %q", user.EmailLc)
	}
	if user.WalletAddressLc != "0xabcdef" {
		t.Fatalf("walletAddressLc = %q", user.WalletAddressLc)
	}
	if user.CountryLc != "de" || user.BusinessNameLc != "alice studio" {
		t.Fatalf("mirrors = %q / %q", user.CountryLc, user.BusinessNameLc)
	}
	if user.LastLoginAtEpoch != lastLogin.Unix() {
		t.Fatalf("lastLoginAtEpoch = %d, want %d", user.LastLoginAtEpoch, lastLogin.Unix())
	}

	user.LastLoginAt = nil
	normalize(user)
	if user.LastLoginAtEpoch != 0 {
		t.Fatalf("cleared lastLoginAt left epoch %d", user.LastLoginAtEpoch)
	}
}

func TestFindByCivicSub(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if _, err := repo.Create(ctx, sampleUser()); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByCivicSub(ctx, "civic|abc123")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.Email != "Alice@Example.com" {
		t.Fatalf("got %+v", got)
	}

	missing, err := repo.FindByCivicSub(ctx, "civic|nobody")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil, got %+v", missing)
	}
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if _, err := repo.Create(ctx, sampleUser()); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByEmail(ctx, "ALICE@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("lookup by differently-cased email missed")
	}
}

func TestFindByWalletAddress(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if _, err := repo.Create(ctx, sampleUser()); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByWalletAddress(ctx, "0xABCDEF")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("lookup by wallet address missed")
	}
}

func TestDeactivateAndActivate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	handle, err := repo.Create(ctx, sampleUser())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deactivated, err := repo.Deactivate(ctx, handle.ID, 1)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.IsActive || deactivated.Version != 2 {
		t.Fatalf("after deactivate: active=%v v%d", deactivated.IsActive, deactivated.Version)
	}

	// Stale version must not win.
	if _, err := repo.Activate(ctx, handle.ID, 1); !errors.Is(err, entity.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	activated, err := repo.Activate(ctx, handle.ID, 2)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !activated.IsActive || activated.Version != 3 {
		t.Fatalf("after activate: active=%v v%d", activated.IsActive, activated.Version)
	}
}

func TestListByRoleAndWalletKind(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	admin := sampleUser()
	admin.CivicSub = "civic|admin"
	admin.Email = "admin@example.com"
	admin.Role = domain.RoleAdmin
	admin.WalletKind = domain.WalletExternal

	for _, u := range []*domain.User{sampleUser(), admin} {
		if _, err := repo.Create(ctx, u); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	admins, err := repo.FindByRole(ctx, domain.RoleAdmin, entity.Pagination{})
	if err != nil {
		t.Fatalf("find by role: %v", err)
	}
	if len(admins.Items) != 1 || admins.Items[0].CivicSub != "civic|admin" {
		t.Fatalf("admins = %+v", admins.Items)
	}

	external, err := repo.ListByWalletKind(ctx, domain.WalletExternal, entity.Pagination{})
	if err != nil {
		t.Fatalf("list by wallet kind: %v", err)
	}
	if len(external.Items) != 1 {
		t.Fatalf("external wallets = %d, want 1", len(external.Items))
	}
}
