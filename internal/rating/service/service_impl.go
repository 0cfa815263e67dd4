package service

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	ratingdomain "github.com/tallyhq/tally/internal/rating/domain"
	usagedomain "github.com/tallyhq/tally/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// currencyPlaces is the rounding precision applied per line amount.
const currencyPlaces = 2

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

type Service struct {
	log *zap.Logger
}

func NewService(p ServiceParam) ratingdomain.Service {
	return &Service{
		log: p.Log.Named("rating.service"),
	}
}

// Rate prices a rollup at a flat unit price. Each line amount is rounded
// half-up to currency precision before totalling, so the total always equals
// the sum of the displayed line amounts.
func (s *Service) Rate(ctx context.Context, rollup usagedomain.Rollup, unitPrice decimal.Decimal) (ratingdomain.RatingResult, error) {
	if unitPrice.IsNegative() {
		return ratingdomain.RatingResult{}, ratingdomain.ErrInvalidUnitPrice
	}

	features := make([]string, 0, len(rollup))
	for feature := range rollup {
		features = append(features, feature)
	}
	sort.Strings(features)

	lines := make([]ratingdomain.RatedLine, 0, len(features))
	total := decimal.Zero
	for _, feature := range features {
		quantity := rollup[feature]
		if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
			return ratingdomain.RatingResult{}, ratingdomain.ErrInvalidQuantity
		}

		amount := decimal.NewFromFloat(quantity).Mul(unitPrice).Round(currencyPlaces)
		lines = append(lines, ratingdomain.RatedLine{
			Feature:   feature,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Amount:    amount,
		})
		total = total.Add(amount)
	}

	return ratingdomain.RatingResult{Lines: lines, Total: total}, nil
}
