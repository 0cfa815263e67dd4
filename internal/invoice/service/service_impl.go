package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/tallyhq/tally/internal/invoice/domain"
	obsmetrics "github.com/tallyhq/tally/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    invoicedomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	repo    invoicedomain.Repository
	metrics *obsmetrics.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Write(ctx context.Context, req invoicedomain.WriteInvoiceRequest) (invoicedomain.Invoice, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCustomer
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidPeriod
	}
	if len(req.Result.Lines) == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrNoLineItems
	}

	now := time.Now().UTC()
	periodStart := req.PeriodStart.UTC()
	periodEnd := req.PeriodEnd.UTC()

	invoice := invoicedomain.Invoice{
		ID:          s.genID.Generate(),
		CustomerID:  customerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Total:       req.Result.Total,
		GeneratedAt: now,
		CreatedAt:   now,
	}

	items := make([]*invoicedomain.InvoiceLineItem, 0, len(req.Result.Lines))
	for _, line := range req.Result.Lines {
		items = append(items, &invoicedomain.InvoiceLineItem{
			ID:        s.genID.Generate(),
			InvoiceID: invoice.ID,
			Feature:   line.Feature,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount,
			CreatedAt: now,
		})
	}

	// all-or-nothing: a concurrent reader never sees a header without
	// its line items
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteByCustomerAndPeriod(ctx, tx, customerID, periodStart, periodEnd); err != nil {
			return err
		}
		if err := s.repo.InsertInvoice(ctx, tx, &invoice); err != nil {
			return err
		}
		return s.repo.InsertLineItems(ctx, tx, items)
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if s.metrics != nil {
		s.metrics.IncInvoiceGenerated()
	}

	for _, item := range items {
		invoice.LineItems = append(invoice.LineItems, *item)
	}
	return invoice, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]invoicedomain.Invoice, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(customerID))
	if err != nil || id == 0 {
		return nil, invoicedomain.ErrInvalidCustomer
	}
	return s.repo.ListByCustomer(ctx, s.db, id)
}
