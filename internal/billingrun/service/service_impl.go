package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	billingrundomain "github.com/tallyhq/tally/internal/billingrun/domain"
	customerdomain "github.com/tallyhq/tally/internal/customer/domain"
	invoicedomain "github.com/tallyhq/tally/internal/invoice/domain"
	obsmetrics "github.com/tallyhq/tally/internal/observability/metrics"
	ratingdomain "github.com/tallyhq/tally/internal/rating/domain"
	usagedomain "github.com/tallyhq/tally/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	CustomerSvc customerdomain.Service
	UsageSvc    usagedomain.Service
	RatingSvc   ratingdomain.Service
	InvoiceSvc  invoicedomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log *zap.Logger

	customerSvc customerdomain.Service
	usageSvc    usagedomain.Service
	ratingSvc   ratingdomain.Service
	invoiceSvc  invoicedomain.Service
	metrics     *obsmetrics.Metrics
}

func NewService(p ServiceParam) billingrundomain.Service {
	return &Service{
		log: p.Log.Named("billingrun.service"),

		customerSvc: p.CustomerSvc,
		usageSvc:    p.UsageSvc,
		ratingSvc:   p.RatingSvc,
		invoiceSvc:  p.InvoiceSvc,
		metrics:     p.Metrics,
	}
}

// Run validates its inputs up front, then walks every customer through
// rollup, rating and invoice write. A failing customer is logged and
// counted; the rest of the run continues.
func (s *Service) Run(ctx context.Context, period string, unitPrice decimal.Decimal) (billingrundomain.Summary, error) {
	periodStart, periodEnd, err := billingrundomain.ParsePeriod(period)
	if err != nil {
		return billingrundomain.Summary{}, err
	}
	if unitPrice.IsNegative() {
		return billingrundomain.Summary{}, ratingdomain.ErrInvalidUnitPrice
	}

	customerIDs, err := s.customerSvc.ListIDs(ctx)
	if err != nil {
		return billingrundomain.Summary{}, err
	}

	var summary billingrundomain.Summary
	for _, customerID := range customerIDs {
		ok, err := s.billCustomer(ctx, customerID.String(), periodStart, periodEnd, unitPrice)
		if err != nil {
			summary.CustomersFailed++
			s.log.Warn("billing run: customer failed",
				zap.String("customer_id", customerID.String()),
				zap.String("period", period),
				zap.Error(err),
			)
			continue
		}
		if !ok {
			summary.CustomersSkipped++
			continue
		}
		summary.InvoicesGenerated++
	}

	if s.metrics != nil {
		s.metrics.AddBillingRunFailures(summary.CustomersFailed)
	}

	s.log.Info("billing run complete",
		zap.String("period", period),
		zap.Int("generated", summary.InvoicesGenerated),
		zap.Int("failed", summary.CustomersFailed),
		zap.Int("skipped", summary.CustomersSkipped),
	)
	return summary, nil
}

// billCustomer returns false with a nil error when the customer has no usage
// in the period; no invoice is written in that case.
func (s *Service) billCustomer(ctx context.Context, customerID string, periodStart, periodEnd time.Time, unitPrice decimal.Decimal) (bool, error) {
	rollup, err := s.usageSvc.Rollup(ctx, customerID, periodStart, periodEnd)
	if err != nil {
		return false, err
	}
	if len(rollup) == 0 {
		return false, nil
	}

	result, err := s.ratingSvc.Rate(ctx, rollup, unitPrice)
	if err != nil {
		return false, err
	}

	_, err = s.invoiceSvc.Write(ctx, invoicedomain.WriteInvoiceRequest{
		CustomerID:  customerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Result:      result,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
