package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/entity"
	"github.com/chainvoice/chainvoice/internal/invoice/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("invoice.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	amount := strings.TrimSpace(req.Amount)
	if amount == "" {
		return nil, domain.ErrInvalidAmount
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = "INV-" + s.genID.Generate().String()
	}
	requestID := "req_" + ulid.Make().String()

	// The store cannot enforce uniqueness, so this pre-check is best
	// effort: it catches reuse of a caller-supplied number but cannot
	// exclude a concurrent writer racing between check and create.
	existing, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: number %s", entity.ErrAlreadyExists, number)
	}

	invoice := &domain.Invoice{
		UserID:            userID,
		Number:            number,
		Amount:            amount,
		Currency:          req.Currency,
		CurrencySymbol:    req.CurrencySymbol,
		CurrencyDecimals:  req.CurrencyDecimals,
		Network:           req.Network,
		PreferredCurrency: orDefault(req.PreferredCurrency, req.Currency),
		PreferredNetwork:  orDefault(req.PreferredNetwork, req.Network),
		Status:            domain.StatusDraft,
		RequestID:         requestID,
		RequestStatus:     "pending",
		PaymentAddress:    req.PaymentAddress,
		ClientEmail:       req.ClientEmail,
		Description:       req.Description,
		ServiceType:       req.ServiceType,
		DueDate:           req.DueDate,
	}
	if _, err := s.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	s.log.Info("invoice created",
		zap.String("id", invoice.ID),
		zap.String("number", invoice.Number),
	)
	return invoice, nil
}

func (s *Service) GetForUser(ctx context.Context, userID, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.repo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil || invoice.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoicesRequest) (entity.Page[*domain.Invoice], error) {
	if strings.TrimSpace(req.UserID) == "" {
		return entity.Page[*domain.Invoice]{}, domain.ErrInvalidUser
	}
	filter := req.Filter
	filter.UserID = req.UserID
	return s.repo.List(ctx, filter, entity.Pagination{Limit: req.Limit, Cursor: req.Cursor})
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (*domain.Invoice, error) {
	current, err := s.GetForUser(ctx, req.UserID, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, current.ID, req.ExpectedVersion, req.Status, req.PaidAmount)
	if err != nil {
		return nil, err
	}

	if req.PaymentID != "" && updated.PaymentID == "" {
		updated, _, err = s.repo.Update(ctx, entity.ByID(updated.ID), updated.Version, func(inv *domain.Invoice) error {
			inv.PaymentID = req.PaymentID
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return updated, nil
}

func (s *Service) DeleteForUser(ctx context.Context, userID, invoiceID string) error {
	invoice, err := s.GetForUser(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, entity.ByID(invoice.ID))
}

func (s *Service) ExtendForUser(ctx context.Context, userID, invoiceID string, addBlocks int64) error {
	invoice, err := s.GetForUser(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	return s.repo.ExtendTTL(ctx, entity.ByID(invoice.ID), addBlocks)
}

func (s *Service) GetPaymentParams(ctx context.Context, requestID string) (domain.PaymentParams, error) {
	invoice, err := s.repo.GetByRequestID(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return domain.PaymentParams{}, err
	}
	if invoice == nil {
		return domain.PaymentParams{}, domain.ErrNotFound
	}
	return domain.PaymentParams{
		InvoiceID:        invoice.ID,
		Number:           invoice.Number,
		Amount:           invoice.Amount,
		Currency:         invoice.Currency,
		CurrencySymbol:   invoice.CurrencySymbol,
		CurrencyDecimals: invoice.CurrencyDecimals,
		Network:          invoice.Network,
		PaymentAddress:   invoice.PaymentAddress,
		Status:           invoice.Status,
		RequestStatus:    invoice.RequestStatus,
	}, nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
