package auth

import (
	"context"
	"errors"
)

// Claims is the verified identity attached to a request. Token
// verification is delegated to the identity provider; this service only
// checks signatures and standard claims.
type Claims struct {
	Subject       string
	Issuer        string
	Audience      []string
	Email         string
	EmailVerified bool
	WalletAddress string
}

// Verifier validates a bearer token and extracts its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

var (
	ErrMissingToken = errors.New("missing_token")
	ErrInvalidToken = errors.New("invalid_token")
)
