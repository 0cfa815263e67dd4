package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	usagedomain "github.com/tallyhq/tally/internal/usage/domain"
)

// IngestEventBatch accepts a JSON array of events, each carrying its own
// customer_id. The whole batch is stored or rejected as a unit.
func (s *Server) IngestEventBatch(c *gin.Context) {
	var events []usagedomain.EventInput
	if err := c.ShouldBindJSON(&events); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	accepted, err := s.usageSvc.IngestBatch(c.Request.Context(), events)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"accepted": accepted})
}

// IngestCustomerEvents accepts events for the customer in the path; any
// customer_id inside the body is overridden.
func (s *Server) IngestCustomerEvents(c *gin.Context) {
	var events []usagedomain.EventInput
	if err := c.ShouldBindJSON(&events); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	customerID := c.Param("id")
	for i := range events {
		events[i].CustomerID = customerID
	}

	accepted, err := s.usageSvc.IngestBatch(c.Request.Context(), events)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"accepted": accepted})
}

func (s *Server) GetUsage(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		AbortWithError(c, usagedomain.ErrInvalidRange)
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		AbortWithError(c, usagedomain.ErrInvalidRange)
		return
	}

	rollup, err := s.usageSvc.Rollup(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rollup)
}

// ListCustomerEvents pages through a customer's events. When both start
// and end are given, it returns the raw events in [start, end) instead.
func (s *Server) ListCustomerEvents(c *gin.Context) {
	if c.Query("start") != "" || c.Query("end") != "" {
		start, err := time.Parse(time.RFC3339, c.Query("start"))
		if err != nil {
			AbortWithError(c, usagedomain.ErrInvalidRange)
			return
		}
		end, err := time.Parse(time.RFC3339, c.Query("end"))
		if err != nil {
			AbortWithError(c, usagedomain.ErrInvalidRange)
			return
		}

		events, err := s.usageSvc.QueryRange(c.Request.Context(), c.Param("id"), start, end)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if events == nil {
			events = []usagedomain.UsageEvent{}
		}

		c.JSON(http.StatusOK, gin.H{"usage_events": events})
		return
	}

	var page struct {
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.usageSvc.List(c.Request.Context(), usagedomain.ListUsageRequest{
		CustomerID: c.Param("id"),
		PageToken:  page.PageToken,
		PageSize:   page.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
