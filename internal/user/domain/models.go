package domain

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/entity"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type KycStatus string

const (
	KycNone     KycStatus = "none"
	KycPending  KycStatus = "pending"
	KycVerified KycStatus = "verified"
	KycRejected KycStatus = "rejected"
)

type WalletKind string

const (
	WalletEmbedded WalletKind = "embedded"
	WalletExternal WalletKind = "external"
)

// User is a creator account keyed by the identity provider subject.
// Lowercased and epoch fields are derived mirrors; they are recomputed on
// every write and exist only so the store can index them.
type User struct {
	entity.Meta

	AuthProvider     string     `json:"authProvider"`
	CivicSub         string     `json:"civicSub"`
	CivicIssuer      string     `json:"civicIssuer,omitempty"`
	CivicAud         string     `json:"civicAud,omitempty"`
	Email            string     `json:"email,omitempty"`
	EmailLc          string     `json:"emailLc,omitempty"`
	EmailVerified    bool       `json:"emailVerified"`
	WalletAddress    string     `json:"walletAddress,omitempty"`
	WalletAddressLc  string     `json:"walletAddressLc,omitempty"`
	WalletKind       WalletKind `json:"walletKind"`
	WalletOrigin     string     `json:"walletOrigin"`
	Role             Role       `json:"role"`
	IsActive         bool       `json:"isActive"`
	KycStatus        KycStatus  `json:"kycStatus"`
	Country          string     `json:"country,omitempty"`
	CountryLc        string     `json:"countryLc,omitempty"`
	BusinessName     string     `json:"businessName,omitempty"`
	BusinessNameLc   string     `json:"businessNameLc,omitempty"`
	DefaultCurrency  string     `json:"defaultCurrency"`
	DefaultNetwork   string     `json:"defaultNetwork"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	LastLoginAtEpoch int64      `json:"lastLoginAtEpoch,omitempty"`
}

// Filter selects users by indexed fields. Zero values constrain nothing;
// tri-state booleans and range bounds are pointers.
type Filter struct {
	CivicSub       string
	Email          string
	EmailVerified  *bool
	WalletAddress  string
	WalletKind     WalletKind
	Role           Role
	IsActive       *bool
	KycStatus      KycStatus
	Country        string
	BusinessName   string
	CreatedAtGte   *int64
	CreatedAtLte   *int64
	LastLoginAtGte *int64
	LastLoginAtLte *int64
}
