package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	invoicedomain "github.com/chainvoice/chainvoice/internal/invoice/domain"
)

// GetPaymentParams is the unauthenticated payer-facing lookup: it serves
// only the fields a payer needs to settle the request.
func (s *Server) GetPaymentParams(c *gin.Context) {
	params, err := s.invoiceSvc.GetPaymentParams(c.Request.Context(), c.Param("requestId"))
	if s.obsMetrics != nil {
		s.obsMetrics.RecordPaymentLookup(c.Request.Context(), err == nil)
	}
	if err != nil {
		if errors.Is(err, invoicedomain.ErrNotFound) {
			AbortWithError(c, ErrNotFound)
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": params})
}
