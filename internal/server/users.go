package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chainvoice/chainvoice/internal/auth"
	userdomain "github.com/chainvoice/chainvoice/internal/user/domain"
)

type upsertMeRequest struct {
	Email           string `json:"email"`
	WalletAddress   string `json:"walletAddress"`
	WalletKind      string `json:"walletKind"`
	WalletOrigin    string `json:"walletOrigin"`
	Country         string `json:"country"`
	BusinessName    string `json:"businessName"`
	DefaultCurrency string `json:"defaultCurrency"`
	DefaultNetwork  string `json:"defaultNetwork"`
}

func (s *Server) UpsertMe(c *gin.Context) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req upsertMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = claims.Email
	}
	wallet := strings.TrimSpace(req.WalletAddress)
	if wallet == "" {
		wallet = claims.WalletAddress
	}
	audience := ""
	if len(claims.Audience) > 0 {
		audience = claims.Audience[0]
	}

	user, err := s.userSvc.UpsertByCivicSub(c.Request.Context(), userdomain.UpsertSelfRequest{
		CivicSub:        claims.Subject,
		CivicIssuer:     claims.Issuer,
		CivicAud:        audience,
		Email:           email,
		EmailVerified:   claims.EmailVerified,
		WalletAddress:   wallet,
		WalletKind:      userdomain.WalletKind(strings.TrimSpace(req.WalletKind)),
		WalletOrigin:    strings.TrimSpace(req.WalletOrigin),
		Country:         strings.TrimSpace(req.Country),
		BusinessName:    strings.TrimSpace(req.BusinessName),
		DefaultCurrency: strings.TrimSpace(req.DefaultCurrency),
		DefaultNetwork:  strings.TrimSpace(req.DefaultNetwork),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		// Version 1 means this login created the account.
		s.obsMetrics.RecordUserLogin(c.Request.Context(), user.Version == 1)
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) GetMe(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}
