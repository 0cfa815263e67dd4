// Package domain contains the rating engine's contract.
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	usagedomain "github.com/tallyhq/tally/internal/usage/domain"
)

// RatedLine is one feature's priced contribution to an invoice.
type RatedLine struct {
	Feature   string          `json:"feature"`
	Quantity  float64         `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// RatingResult pairs the rated lines with their total. Total is always the
// exact sum of the rounded line amounts.
type RatingResult struct {
	Lines []RatedLine     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type Service interface {
	Rate(ctx context.Context, rollup usagedomain.Rollup, unitPrice decimal.Decimal) (RatingResult, error)
}

var (
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
)
