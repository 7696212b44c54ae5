package service

import (
	"context"
	"strings"

	"github.com/chainvoice/chainvoice/internal/clock"
	"github.com/chainvoice/chainvoice/internal/entity"
	"github.com/chainvoice/chainvoice/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("user.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) UpsertByCivicSub(ctx context.Context, req domain.UpsertSelfRequest) (*domain.User, error) {
	sub := strings.TrimSpace(req.CivicSub)
	if sub == "" {
		return nil, domain.ErrInvalidSubject
	}

	existing, err := s.repo.FindByCivicSub(ctx, sub)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()

	if existing == nil {
		user := &domain.User{
			AuthProvider:    orDefault(req.AuthProvider, "civic"),
			CivicSub:        sub,
			CivicIssuer:     req.CivicIssuer,
			CivicAud:        req.CivicAud,
			Email:           req.Email,
			EmailVerified:   req.EmailVerified,
			WalletAddress:   req.WalletAddress,
			WalletKind:      orDefault(req.WalletKind, domain.WalletEmbedded),
			WalletOrigin:    orDefault(req.WalletOrigin, "civic"),
			Role:            domain.RoleUser,
			IsActive:        true,
			KycStatus:       domain.KycNone,
			Country:         req.Country,
			BusinessName:    req.BusinessName,
			DefaultCurrency: req.DefaultCurrency,
			DefaultNetwork:  req.DefaultNetwork,
			LastLoginAt:     &now,
		}
		if _, err := s.repo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.log.Info("user created", zap.String("id", user.ID))
		return user, nil
	}

	updated, _, err := s.repo.Update(ctx, entity.ByID(existing.ID), existing.Version, func(u *domain.User) error {
		u.CivicIssuer = orDefault(req.CivicIssuer, u.CivicIssuer)
		u.CivicAud = orDefault(req.CivicAud, u.CivicAud)
		u.Email = orDefault(req.Email, u.Email)
		if req.Email != "" {
			u.EmailVerified = req.EmailVerified
		}
		u.WalletAddress = orDefault(req.WalletAddress, u.WalletAddress)
		u.WalletKind = orDefault(req.WalletKind, u.WalletKind)
		u.WalletOrigin = orDefault(req.WalletOrigin, u.WalletOrigin)
		u.Country = orDefault(req.Country, u.Country)
		u.BusinessName = orDefault(req.BusinessName, u.BusinessName)
		u.DefaultCurrency = orDefault(req.DefaultCurrency, u.DefaultCurrency)
		u.DefaultNetwork = orDefault(req.DefaultNetwork, u.DefaultNetwork)
		u.LastLoginAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) GetSelf(ctx context.Context, civicSub string) (*domain.User, error) {
	sub := strings.TrimSpace(civicSub)
	if sub == "" {
		return nil, domain.ErrInvalidSubject
	}
	user, err := s.repo.FindByCivicSub(ctx, sub)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func orDefault[T ~string](value, def T) T {
	if value == "" {
		return def
	}
	return value
}
