package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/entity"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"github.com/chainvoice/chainvoice/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const kind = "invoices"

type Params struct {
	fx.In

	Client golemdb.Client
	Clock  clock.Clock
	Config config.Config
	Log    *zap.Logger
}

type repo struct {
	core  *entity.Repository[*domain.Invoice, domain.Filter]
	clock clock.Clock
}

func Provide(p Params) domain.Repository {
	core := entity.New(p.Client, p.Clock, p.Log, entity.Config[*domain.Invoice, domain.Filter]{
		Kind:       kind,
		New:        func() *domain.Invoice { return &domain.Invoice{} },
		Normalize:  normalize,
		Annotate:   annotate,
		BuildQuery: buildQuery,
		CreateBTL:  p.Config.Store.CreateBTL,
	})
	return &repo{core: core, clock: p.Clock}
}

// normalize recomputes every derived mirror from its source field.
func normalize(inv *domain.Invoice) {
	inv.PaymentAddress = strings.TrimSpace(inv.PaymentAddress)
	inv.PaymentAddressLc = strings.ToLower(inv.PaymentAddress)
	inv.ClientEmail = strings.TrimSpace(inv.ClientEmail)
	inv.ClientEmailLc = strings.ToLower(inv.ClientEmail)
	inv.ServiceTypeLc = strings.ToLower(strings.TrimSpace(inv.ServiceType))
	inv.NetworkLc = strings.ToLower(strings.TrimSpace(inv.Network))
	inv.PreferredCurrencyLc = strings.ToLower(strings.TrimSpace(inv.PreferredCurrency))
	inv.PreferredNetworkLc = strings.ToLower(strings.TrimSpace(inv.PreferredNetwork))
	if inv.DueDate != nil {
		inv.DueDateEpoch = inv.DueDate.Unix()
	} else {
		inv.DueDateEpoch = 0
	}
	if inv.PaidAt != nil {
		inv.PaidAtEpoch = inv.PaidAt.Unix()
	} else {
		inv.PaidAtEpoch = 0
	}
}

// annotate mirrors the indexable fields as store tags in the canonical
// key order for this kind.
func annotate(inv *domain.Invoice) entity.Annotations {
	var a entity.Annotations
	a.Str("type", kind)
	a.Str("id", inv.ID)
	a.Str("user_id", inv.UserID)
	a.StrOpt("org_id", inv.OrgID)
	a.Str("number", inv.Number)
	a.Str("currency", inv.Currency)
	a.Str("currency_symbol", inv.CurrencySymbol)
	a.Str("network", inv.Network)
	a.Str("preferred_currency", inv.PreferredCurrency)
	a.Str("preferred_network", inv.PreferredNetwork)
	a.Str("status", string(inv.Status))
	a.StrOpt("payment_id", inv.PaymentID)
	a.Str("request_id", inv.RequestID)
	a.Str("request_status", inv.RequestStatus)
	a.Str("payment_address_lc", inv.PaymentAddressLc)
	a.StrOpt("client_email_lc", inv.ClientEmailLc)
	a.StrOpt("service_type_lc", inv.ServiceTypeLc)
	a.StrOpt("payment_reference", inv.PaymentReference)
	a.Str("network_lc", inv.NetworkLc)
	a.Str("preferred_currency_lc", inv.PreferredCurrencyLc)
	a.Str("preferred_network_lc", inv.PreferredNetworkLc)

	a.Num("version", inv.Version)
	a.Num("created_at_epoch", inv.CreatedAtEpoch)
	a.Num("updated_at_epoch", inv.UpdatedAtEpoch)
	a.NumOpt("due_date_epoch", inv.DueDateEpoch)
	a.NumOpt("paid_at_epoch", inv.PaidAtEpoch)
	a.Num("currency_decimals_num", inv.CurrencyDecimals)
	return a
}

func buildQuery(f domain.Filter) (string, error) {
	return entity.NewQuery(kind).
		Eq("user_id", f.UserID).
		Eq("client_email_lc", strings.ToLower(strings.TrimSpace(f.ClientEmail))).
		Eq("status", string(f.Status)).
		Eq("payment_address_lc", strings.ToLower(strings.TrimSpace(f.PaymentAddress))).
		Eq("service_type_lc", strings.ToLower(strings.TrimSpace(f.ServiceType))).
		Eq("network_lc", strings.ToLower(strings.TrimSpace(f.Network))).
		Eq("preferred_currency_lc", strings.ToLower(strings.TrimSpace(f.PreferredCurrency))).
		Eq("preferred_network_lc", strings.ToLower(strings.TrimSpace(f.PreferredNetwork))).
		Gte("due_date_epoch", f.DueDateGte).
		Lte("due_date_epoch", f.DueDateLte).
		Gte("paid_at_epoch", f.PaidAtGte).
		Lte("paid_at_epoch", f.PaidAtLte).
		Build()
}

func (r *repo) Create(ctx context.Context, invoice *domain.Invoice, opts ...entity.WriteOption) (entity.Handle, error) {
	return r.core.Create(ctx, invoice, opts...)
}

func (r *repo) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.core.Read(ctx, id)
}

func (r *repo) GetByEntityKey(ctx context.Context, entityKey string) (*domain.Invoice, error) {
	return r.core.ReadByEntityKey(ctx, entityKey)
}

func (r *repo) List(ctx context.Context, filter domain.Filter, page entity.Pagination) (entity.Page[*domain.Invoice], error) {
	return r.core.ReadMany(ctx, filter, page)
}

func (r *repo) Update(ctx context.Context, target entity.Target, expectedVersion int64, apply func(*domain.Invoice) error) (*domain.Invoice, entity.Handle, error) {
	return r.core.Update(ctx, target, expectedVersion, apply)
}

func (r *repo) Delete(ctx context.Context, target entity.Target) error {
	return r.core.Delete(ctx, target)
}

func (r *repo) ExtendTTL(ctx context.Context, target entity.Target, addBlocks int64) error {
	return r.core.ExtendTTL(ctx, target, addBlocks)
}

func (r *repo) Exists(ctx context.Context, target entity.Target) bool {
	return r.core.Exists(ctx, target)
}

func (r *repo) Count(ctx context.Context, filter domain.Filter) (int64, error) {
	return r.core.Count(ctx, filter)
}

func (r *repo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.findOne(ctx, "number", number)
}

func (r *repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Invoice, error) {
	return r.findOne(ctx, "request_id", requestID)
}

// findOne is a limit-1 lookup by a unique annotation key.
func (r *repo) findOne(ctx context.Context, field, value string) (*domain.Invoice, error) {
	query, err := entity.NewQuery(kind).Eq(field, value).Build()
	if err != nil {
		return nil, err
	}
	page, err := r.core.QueryByAnnotations(ctx, query, entity.Pagination{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return page.Items[0], nil
}

func (r *repo) ListByUser(ctx context.Context, userID string, page entity.Pagination) (entity.Page[*domain.Invoice], error) {
	return r.core.ReadMany(ctx, domain.Filter{UserID: userID}, page)
}

func (r *repo) UpdateStatus(ctx context.Context, id string, expectedVersion int64, to domain.Status, paidAmount string) (*domain.Invoice, error) {
	updated, _, err := r.core.Update(ctx, entity.ByID(id), expectedVersion, func(inv *domain.Invoice) error {
		if !domain.CanTransition(inv.Status, to) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, inv.Status, to)
		}
		inv.Status = to
		if to == domain.StatusPaid {
			now := r.clock.Now().UTC()
			inv.PaidAt = &now
			if paidAmount != "" {
				inv.PaidAmount = paidAmount
			} else {
				inv.PaidAmount = inv.Amount
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
