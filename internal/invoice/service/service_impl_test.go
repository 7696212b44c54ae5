package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/entity"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"github.com/chainvoice/chainvoice/internal/invoice/domain"
	"github.com/chainvoice/chainvoice/internal/invoice/repository"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	clk := clock.NewFakeClock(time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC))
	repo := repository.Provide(repository.Params{
		Client: golemdb.NewMemoryClient(),
		Clock:  clk,
		Config: config.Config{},
		Log:    zap.NewNop(),
	})
	return New(Params{
		Log:   zap.NewNop(),
		Clock: clk,
		GenID: node,
		Repo:  repo,
	})
}

func createRequest() domain.CreateInvoiceRequest {
	return domain.CreateInvoiceRequest{
		UserID:           "u1",
		Amount:           "250.00",
		Currency:         "USDC",
		CurrencySymbol:   "$",
		CurrencyDecimals: 6,
		Network:          "base",
		PaymentAddress:   "0xabc",
		ClientEmail:      "client@example.com",
	}
}

func TestCreateGeneratesIdentifiers(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	invoice, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !strings.HasPrefix(invoice.Number, "INV-") {
		t.Fatalf("number = %q", invoice.Number)
	}
	if !strings.HasPrefix(invoice.RequestID, "req_") {
		t.Fatalf("requestId = %q", invoice.RequestID)
	}
	if invoice.Status != domain.StatusDraft {
		t.Fatalf("status = %s, want DRAFT", invoice.Status)
	}
	if invoice.PreferredCurrency != "USDC" || invoice.PreferredNetwork != "base" {
		t.Fatalf("preferred fallbacks = %q / %q", invoice.PreferredCurrency, invoice.PreferredNetwork)
	}
	if invoice.Version != 1 || invoice.EntityKey == "" {
		t.Fatalf("handle fields: v%d key %q", invoice.Version, invoice.EntityKey)
	}
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	req := createRequest()
	req.Number = "INV-CUSTOM-1"
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(ctx, req)
	if !errors.Is(err, entity.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	req := createRequest()
	req.UserID = " "
	if _, err := svc.Create(ctx, req); !errors.Is(err, domain.ErrInvalidUser) {
		t.Fatalf("expected ErrInvalidUser, got %v", err)
	}

	req = createRequest()
	req.Amount = ""
	if _, err := svc.Create(ctx, req); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestGetForUserEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	invoice, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GetForUser(ctx, "u1", invoice.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.GetForUser(ctx, "intruder", invoice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign read: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatusThroughService(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	invoice, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		UserID:          "u1",
		InvoiceID:       invoice.ID,
		ExpectedVersion: 1,
		Status:          domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusPending || updated.Version != 2 {
		t.Fatalf("after update: %s v%d", updated.Status, updated.Version)
	}

	paid, err := svc.UpdateStatus(ctx, domain.UpdateStatusRequest{
		UserID:          "u1",
		InvoiceID:       invoice.ID,
		ExpectedVersion: 2,
		Status:          domain.StatusPaid,
		PaidAmount:      "250.00",
		PaymentID:       "pay_123",
	})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.Status != domain.StatusPaid || paid.PaymentID != "pay_123" {
		t.Fatalf("after pay: %s payment %q", paid.Status, paid.PaymentID)
	}
}

func TestGetPaymentParams(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	invoice, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	params, err := svc.GetPaymentParams(ctx, invoice.RequestID)
	if err != nil {
		t.Fatalf("payment params: %v", err)
	}
	if params.InvoiceID != invoice.ID || params.Amount != "250.00" || params.PaymentAddress != "0xabc" {
		t.Fatalf("params = %+v", params)
	}

	if _, err := svc.GetPaymentParams(ctx, "req_unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteForUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	invoice, err := svc.Create(ctx, createRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteForUser(ctx, "intruder", invoice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteForUser(ctx, "u1", invoice.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetForUser(ctx, "u1", invoice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("read after delete: expected ErrNotFound, got %v", err)
	}
}
