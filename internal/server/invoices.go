package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	invoicedomain "github.com/chainvoice/chainvoice/internal/invoice/domain"
)

type createInvoiceRequest struct {
	Number            string `json:"number"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	CurrencySymbol    string `json:"currencySymbol"`
	CurrencyDecimals  int64  `json:"currencyDecimals"`
	Network           string `json:"network"`
	PreferredCurrency string `json:"preferredCurrency"`
	PreferredNetwork  string `json:"preferredNetwork"`
	PaymentAddress    string `json:"paymentAddress"`
	ClientEmail       string `json:"clientEmail"`
	Description       string `json:"description"`
	ServiceType       string `json:"serviceType"`
	DueDate           string `json:"dueDate"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("dueDate", "invalid_due_date", "invalid dueDate"))
		return
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		UserID:            user.ID,
		Number:            strings.TrimSpace(req.Number),
		Amount:            strings.TrimSpace(req.Amount),
		Currency:          strings.TrimSpace(req.Currency),
		CurrencySymbol:    strings.TrimSpace(req.CurrencySymbol),
		CurrencyDecimals:  req.CurrencyDecimals,
		Network:           strings.TrimSpace(req.Network),
		PreferredCurrency: strings.TrimSpace(req.PreferredCurrency),
		PreferredNetwork:  strings.TrimSpace(req.PreferredNetwork),
		PaymentAddress:    strings.TrimSpace(req.PaymentAddress),
		ClientEmail:       strings.TrimSpace(req.ClientEmail),
		Description:       strings.TrimSpace(req.Description),
		ServiceType:       strings.TrimSpace(req.ServiceType),
		DueDate:           dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordInvoiceEvent(c.Request.Context(), "create", string(invoice.Status))
	}

	c.JSON(http.StatusCreated, gin.H{"data": invoice})
}

func (s *Server) ListInvoices(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var query struct {
		Limit       int    `form:"limit"`
		Cursor      string `form:"cursor"`
		Status      string `form:"status"`
		ClientEmail string `form:"client_email"`
		ServiceType string `form:"service_type"`
		Network     string `form:"network"`
		DueDateGte  *int64 `form:"due_date_gte"`
		DueDateLte  *int64 `form:"due_date_lte"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	limit := query.Limit
	if max := s.limits.Get().MaxPageSize; limit > max {
		limit = max
	}

	page, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoicesRequest{
		UserID: user.ID,
		Filter: invoicedomain.Filter{
			Status:      invoicedomain.Status(strings.TrimSpace(query.Status)),
			ClientEmail: strings.TrimSpace(query.ClientEmail),
			ServiceType: strings.TrimSpace(query.ServiceType),
			Network:     strings.TrimSpace(query.Network),
			DueDateGte:  query.DueDateGte,
			DueDateLte:  query.DueDateLte,
		},
		Limit:  limit,
		Cursor: strings.TrimSpace(query.Cursor),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        page.Items,
		"next_cursor": page.NextCursor,
	})
}

func (s *Server) GetInvoice(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	invoice, err := s.invoiceSvc.GetForUser(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

type updateInvoiceStatusRequest struct {
	Status          string `json:"status"`
	ExpectedVersion int64  `json:"expected_version"`
	PaidAmount      string `json:"paid_amount"`
	PaymentID       string `json:"payment_id"`
}

func (s *Server) UpdateInvoiceStatus(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req updateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Status) == "" || req.ExpectedVersion <= 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.UpdateStatus(c.Request.Context(), invoicedomain.UpdateStatusRequest{
		UserID:          user.ID,
		InvoiceID:       c.Param("id"),
		ExpectedVersion: req.ExpectedVersion,
		Status:          invoicedomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
		PaidAmount:      strings.TrimSpace(req.PaidAmount),
		PaymentID:       strings.TrimSpace(req.PaymentID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordInvoiceEvent(c.Request.Context(), "status_change", string(invoice.Status))
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	if err := s.invoiceSvc.DeleteForUser(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type extendInvoiceRequest struct {
	Blocks int64 `json:"blocks"`
}

func (s *Server) ExtendInvoice(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req extendInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Blocks <= 0 || req.Blocks > s.limits.Get().MaxExtendBlocks {
		AbortWithError(c, newValidationError("blocks", "invalid_blocks", "blocks out of range"))
		return
	}

	if err := s.invoiceSvc.ExtendForUser(c.Request.Context(), user.ID, c.Param("id"), req.Blocks); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"extended_by": req.Blocks}})
}

func parseOptionalTime(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	utc := parsed.UTC()
	return &utc, nil
}
