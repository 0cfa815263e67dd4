package domain

import (
	"context"
	"errors"
	"time"

	ratingdomain "github.com/tallyhq/tally/internal/rating/domain"
)

type WriteInvoiceRequest struct {
	CustomerID  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Result      ratingdomain.RatingResult
}

type Service interface {
	// Write persists an invoice header and its line items in one
	// transaction, replacing any prior invoice for the same
	// (customer, period). No partial invoice is ever visible.
	Write(context.Context, WriteInvoiceRequest) (Invoice, error)

	// ListByCustomer returns a customer's invoices newest-first with
	// nested line items.
	ListByCustomer(ctx context.Context, customerID string) ([]Invoice, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrNoLineItems     = errors.New("no_line_items")
)
