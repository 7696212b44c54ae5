package repository

import (
	"context"
	"strings"

	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/chainvoice/chainvoice/internal/entity"
	"github.com/chainvoice/chainvoice/internal/golemdb"
	"github.com/chainvoice/chainvoice/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const kind = "users"

type Params struct {
	fx.In

	Client golemdb.Client
	Clock  clock.Clock
	Config config.Config
	Log    *zap.Logger
}

type repo struct {
	core *entity.Repository[*domain.User, domain.Filter]
}

func Provide(p Params) domain.Repository {
	core := entity.New(p.Client, p.Clock, p.Log, entity.Config[*domain.User, domain.Filter]{
		Kind:       kind,
		New:        func() *domain.User { return &domain.User{} },
		Normalize:  normalize,
		Annotate:   annotate,
		BuildQuery: buildQuery,
		CreateBTL:  p.Config.Store.CreateBTL,
	})
	return &repo{core: core}
}

// normalize recomputes every derived mirror from its source field.
func normalize(u *domain.User) {
	u.Email = strings.TrimSpace(u.Email)
	u.EmailLc = strings.ToLower(u.Email)
	u.WalletAddress = strings.TrimSpace(u.WalletAddress)
	u.WalletAddressLc = strings.ToLower(u.WalletAddress)
	u.CountryLc = strings.ToLower(strings.TrimSpace(u.Country))
	u.BusinessNameLc = strings.ToLower(strings.TrimSpace(u.BusinessName))
	if u.LastLoginAt != nil {
		u.LastLoginAtEpoch = u.LastLoginAt.Unix()
	} else {
		u.LastLoginAtEpoch = 0
	}
}

// annotate mirrors the indexable fields as store tags. Key order is the
// canonical one for this kind; optional fields emit nothing when unset.
func annotate(u *domain.User) entity.Annotations {
	var a entity.Annotations
	a.Str("type", kind)
	a.Str("id", u.ID)
	a.Str("auth_provider", u.AuthProvider)
	a.Str("civic_sub", u.CivicSub)
	a.StrOpt("civic_issuer", u.CivicIssuer)
	a.StrOpt("civic_aud", u.CivicAud)
	a.StrOpt("email_lc", u.EmailLc)
	a.StrOpt("wallet_address_lc", u.WalletAddressLc)
	a.Str("wallet_kind", string(u.WalletKind))
	a.Str("wallet_origin", u.WalletOrigin)
	a.Str("role", string(u.Role))
	a.Str("kyc_status", string(u.KycStatus))
	a.StrOpt("country_lc", u.CountryLc)
	a.StrOpt("business_name_lc", u.BusinessNameLc)
	a.Str("default_currency", u.DefaultCurrency)
	a.Str("default_network", u.DefaultNetwork)

	a.Num("version", u.Version)
	a.Num("created_at_epoch", u.CreatedAtEpoch)
	a.Num("updated_at_epoch", u.UpdatedAtEpoch)
	a.Bool("email_verified_num", u.EmailVerified)
	a.Bool("is_active_num", u.IsActive)
	a.NumOpt("last_login_at_epoch", u.LastLoginAtEpoch)
	return a
}

func buildQuery(f domain.Filter) (string, error) {
	return entity.NewQuery(kind).
		Eq("civic_sub", f.CivicSub).
		Eq("email_lc", strings.ToLower(strings.TrimSpace(f.Email))).
		EqBool("email_verified_num", f.EmailVerified).
		Eq("wallet_address_lc", strings.ToLower(strings.TrimSpace(f.WalletAddress))).
		Eq("wallet_kind", string(f.WalletKind)).
		Eq("role", string(f.Role)).
		EqBool("is_active_num", f.IsActive).
		Eq("kyc_status", string(f.KycStatus)).
		Eq("country_lc", strings.ToLower(strings.TrimSpace(f.Country))).
		Eq("business_name_lc", strings.ToLower(strings.TrimSpace(f.BusinessName))).
		Gte("created_at_epoch", f.CreatedAtGte).
		Lte("created_at_epoch", f.CreatedAtLte).
		Gte("last_login_at_epoch", f.LastLoginAtGte).
		Lte("last_login_at_epoch", f.LastLoginAtLte).
		Build()
}

func (r *repo) Create(ctx context.Context, user *domain.User, opts ...entity.WriteOption) (entity.Handle, error) {
	return r.core.Create(ctx, user, opts...)
}

func (r *repo) Get(ctx context.Context, id string) (*domain.User, error) {
	return r.core.Read(ctx, id)
}

func (r *repo) GetByEntityKey(ctx context.Context, entityKey string) (*domain.User, error) {
	return r.core.ReadByEntityKey(ctx, entityKey)
}

func (r *repo) List(ctx context.Context, filter domain.Filter, page entity.Pagination) (entity.Page[*domain.User], error) {
	return r.core.ReadMany(ctx, filter, page)
}

func (r *repo) Update(ctx context.Context, target entity.Target, expectedVersion int64, apply func(*domain.User) error) (*domain.User, entity.Handle, error) {
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

func (r *repo) FindByCivicSub(ctx context.Context, civicSub string) (*domain.User, error) {
	return r.findOne(ctx, domain.Filter{CivicSub: civicSub})
}

func (r *repo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, domain.Filter{Email: email})
}

func (r *repo) FindByWalletAddress(ctx context.Context, address string) (*domain.User, error) {
	return r.findOne(ctx, domain.Filter{WalletAddress: address})
}

func (r *repo) findOne(ctx context.Context, filter domain.Filter) (*domain.User, error) {
	page, err := r.core.ReadMany(ctx, filter, entity.Pagination{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}
	return page.Items[0], nil
}

func (r *repo) FindByRole(ctx context.Context, role domain.Role, page entity.Pagination) (entity.Page[*domain.User], error) {
	return r.core.ReadMany(ctx, domain.Filter{Role: role}, page)
}

func (r *repo) ListByWalletKind(ctx context.Context, kind domain.WalletKind, page entity.Pagination) (entity.Page[*domain.User], error) {
	return r.core.ReadMany(ctx, domain.Filter{WalletKind: kind}, page)
}

func (r *repo) Activate(ctx context.Context, id string, expectedVersion int64) (*domain.User, error) {
	return r.setActive(ctx, id, expectedVersion, true)
}

func (r *repo) Deactivate(ctx context.Context, id string, expectedVersion int64) (*domain.User, error) {
	return r.setActive(ctx, id, expectedVersion, false)
}

func (r *repo) setActive(ctx context.Context, id string, expectedVersion int64, active bool) (*domain.User, error) {
	updated, _, err := r.core.Update(ctx, entity.ByID(id), expectedVersion, func(u *domain.User) error {
		u.IsActive = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
