package domain

import (
	"context"
	"errors"
	"time"

	"github.com/chainvoice/chainvoice/internal/entity"
)

type CreateInvoiceRequest struct {
	UserID            string
	Number            string
	Amount            string
	Currency          string
	CurrencySymbol    string
	CurrencyDecimals  int64
	Network           string
	PreferredCurrency string
	PreferredNetwork  string
	PaymentAddress    string
	ClientEmail       string
	Description       string
	ServiceType       string
	DueDate           *time.Time
}

type ListInvoicesRequest struct {
	UserID string
	Filter Filter
	Limit  int
	Cursor string
}

type UpdateStatusRequest struct {
	UserID          string
	InvoiceID       string
	ExpectedVersion int64
	Status          Status
	PaidAmount      string
	PaymentID       string
}

// PaymentParams is the public read-only projection served to payers by
// request id. It exposes nothing about the issuing account beyond the
// payment address.
type PaymentParams struct {
	InvoiceID        string `json:"invoiceId"`
	Number           string `json:"number"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	CurrencySymbol   string `json:"currencySymbol"`
	CurrencyDecimals int64  `json:"currencyDecimals"`
	Network          string `json:"network"`
	PaymentAddress   string `json:"paymentAddress"`
	Status           Status `json:"status"`
	RequestStatus    string `json:"requestStatus"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	GetForUser(ctx context.Context, userID, invoiceID string) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) (entity.Page[*Invoice], error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Invoice, error)
	DeleteForUser(ctx context.Context, userID, invoiceID string) error
	ExtendForUser(ctx context.Context, userID, invoiceID string, addBlocks int64) error
	GetPaymentParams(ctx context.Context, requestID string) (PaymentParams, error)
}

var (
	ErrInvalidTransition = errors.New("invalid_status_transition")
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrNotFound          = errors.New("invoice_not_found")
)
