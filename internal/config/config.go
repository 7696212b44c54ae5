package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Module provides the application configuration.
var Module = fx.Provide(Load, NewLimitsHolder)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Store StoreConfig
	Auth  AuthConfig
}

// StoreConfig configures the entity store connection.
type StoreConfig struct {
	// Backend selects the store implementation: "rpc" or "memory".
	Backend  string
	Endpoint string
	// CreateBTL is the default blocks-to-live stamped on new entities.
	CreateBTL int64
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	// Mode selects the verification algorithm: "hs256" or "rs256".
	Mode        string
	HS256Secret string
	RS256PEM    string
	Issuer      string
	Audience    string
}

const (
	StoreBackendRPC    = "rpc"
	StoreBackendMemory = "memory"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "chainvoice"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Store: StoreConfig{
			Backend:   normalizeBackend(getenv("STORE_BACKEND", StoreBackendRPC)),
			Endpoint:  getenv("GOLEMDB_ENDPOINT", "http://localhost:8545"),
			CreateBTL: getenvInt64("GOLEMDB_CREATE_BTL", 0),
		},
		Auth: AuthConfig{
			Mode:        strings.ToLower(getenv("AUTH_MODE", "hs256")),
			HS256Secret: strings.TrimSpace(getenv("AUTH_HS256_SECRET", "")),
			RS256PEM:    strings.TrimSpace(getenv("AUTH_RS256_PUBLIC_KEY", "")),
			Issuer:      strings.TrimSpace(getenv("AUTH_ISSUER", "")),
			Audience:    strings.TrimSpace(getenv("AUTH_AUDIENCE", "")),
		},
	}
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StoreBackendMemory:
		return StoreBackendMemory
	default:
		return StoreBackendRPC
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
