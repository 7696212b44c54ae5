package domain

import (
	"context"
	"errors"
)

// UpsertSelfRequest carries the identity claims and profile fields for a
// login-time upsert. Empty profile fields leave the stored value alone.
type UpsertSelfRequest struct {
	CivicSub      string
	CivicIssuer   string
	CivicAud      string
	AuthProvider  string
	Email         string
	EmailVerified bool

	WalletAddress   string
	WalletKind      WalletKind
	WalletOrigin    string
	Country         string
	BusinessName    string
	DefaultCurrency string
	DefaultNetwork  string
}

type Service interface {
	// UpsertByCivicSub creates the account on first login and refreshes
	// profile fields plus lastLoginAt on every subsequent one.
	UpsertByCivicSub(ctx context.Context, req UpsertSelfRequest) (*User, error)
	GetSelf(ctx context.Context, civicSub string) (*User, error)
}

var (
	ErrInvalidSubject = errors.New("invalid_subject")
	ErrNotFound       = errors.New("user_not_found")
)
