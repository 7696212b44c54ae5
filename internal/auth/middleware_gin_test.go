package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chainvoice/chainvoice/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Claims) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := NewVerifier(config.Config{
		Auth: config.AuthConfig{HS256Secret: testSecret},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	var seen Claims
	router := gin.New()
	router.GET("/protected", Required(verifier), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		seen = claims
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequiredRejectsMissingHeader(t *testing.T) {
	router, _ := newTestRouter(t)
	if rec := doRequest(router, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequiredRejectsMalformedHeader(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, header := range []string{"Bearer", "Bearer ", "Basic abc", "token"} {
		if rec := doRequest(router, header); rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequiredRejectsBadToken(t *testing.T) {
	router, _ := newTestRouter(t)
	if rec := doRequest(router, "Bearer not-a-jwt"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequiredPassesClaimsToHandler(t *testing.T) {
	router, seen := newTestRouter(t)

	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "civic|abc123",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": "alice@example.com",
	})

	rec := doRequest(router, "Bearer "+raw)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if seen.Subject != "civic|abc123" || seen.Email != "alice@example.com" {
		t.Fatalf("claims = %+v", seen)
	}
}
