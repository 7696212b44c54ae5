package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type tokenClaims struct {
	jwt.RegisteredClaims

	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	WalletAddress string `json:"wallet_address,omitempty"`
}

type jwtVerifier struct {
	keyfunc jwt.Keyfunc
	opts    []jwt.ParserOption
	log     *zap.Logger
}

// NewVerifier builds the JWT verifier from the configured mode: "hs256"
// with a shared secret or "rs256" with a PEM public key.
func NewVerifier(cfg config.Config, log *zap.Logger) (Verifier, error) {
	authCfg := cfg.Auth

	var (
		keyfunc jwt.Keyfunc
		methods []string
	)
	switch strings.ToLower(strings.TrimSpace(authCfg.Mode)) {
	case "rs256":
		if authCfg.RS256PEM == "" {
			return nil, fmt.Errorf("auth: AUTH_RS256_PUBLIC_KEY is required for rs256 mode")
		}
		publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(authCfg.RS256PEM))
		if err != nil {
			return nil, fmt.Errorf("auth: parse rs256 public key: %w", err)
		}
		keyfunc = func(*jwt.Token) (any, error) { return publicKey, nil }
		methods = []string{jwt.SigningMethodRS256.Alg()}
	case "hs256", "":
		if authCfg.HS256Secret == "" {
			return nil, fmt.Errorf("auth: AUTH_HS256_SECRET is required for hs256 mode")
		}
		secret := []byte(authCfg.HS256Secret)
		keyfunc = func(*jwt.Token) (any, error) { return secret, nil }
		methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, fmt.Errorf("auth: unsupported mode %q", authCfg.Mode)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
	}
	if authCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(authCfg.Issuer))
	}
	if authCfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(authCfg.Audience))
	}

	return &jwtVerifier{
		keyfunc: keyfunc,
		opts:    opts,
		log:     log.Named("auth.jwt"),
	}, nil
}

func (v *jwtVerifier) Verify(_ context.Context, raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(raw, &tokenClaims{}, v.keyfunc, v.opts...)
	if err != nil {
		v.log.Debug("token rejected", zap.Error(err))
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	parsed, ok := token.Claims.(*tokenClaims)
	if !ok || strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		Subject:       parsed.Subject,
		Issuer:        parsed.Issuer,
		Audience:      parsed.Audience,
		Email:         parsed.Email,
		EmailVerified: parsed.EmailVerified,
		WalletAddress: parsed.WalletAddress,
	}, nil
}
