// Package domain contains the billing run contract.
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Summary reports the outcome of one billing run.
type Summary struct {
	InvoicesGenerated int `json:"invoices_generated"`
	CustomersFailed   int `json:"customers_failed"`
	CustomersSkipped  int `json:"customers_skipped"`
}

type Service interface {
	// Run bills every customer for the calendar-month period
	// ("YYYY-MM") at a flat unit price. Per-customer failures are
	// recorded and do not abort the run.
	Run(ctx context.Context, period string, unitPrice decimal.Decimal) (Summary, error)
}

var ErrInvalidPeriod = errors.New("invalid_period")
