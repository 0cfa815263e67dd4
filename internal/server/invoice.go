package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/tallyhq/tally/internal/rating/domain"
)

// defaultUnitPrice applies when a billing run does not name a price.
var defaultUnitPrice = decimal.RequireFromString("0.01")

func (s *Server) ListInvoices(c *gin.Context) {
	invoices, err := s.invoiceSvc.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (s *Server) RunBilling(c *gin.Context) {
	period := strings.TrimSpace(c.Query("period"))

	unitPrice := defaultUnitPrice
	if raw := strings.TrimSpace(c.Query("unit_price")); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			AbortWithError(c, ratingdomain.ErrInvalidUnitPrice)
			return
		}
		unitPrice = parsed
	}

	summary, err := s.billingRunSvc.Run(c.Request.Context(), period, unitPrice)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}
