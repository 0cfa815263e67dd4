package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/tallyhq/tally/internal/customer/domain"
	obsmetrics "github.com/tallyhq/tally/internal/observability/metrics"
	usagedomain "github.com/tallyhq/tally/internal/usage/domain"
	"github.com/tallyhq/tally/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        usagedomain.Repository
	CustomerSvc customerdomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	repo        usagedomain.Repository
	customerSvc customerdomain.Service
	metrics     *obsmetrics.Metrics
}

func NewService(p ServiceParam) usagedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("usage.service"),

		genID:       p.GenID,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		metrics:     p.Metrics,
	}
}

func (s *Service) IngestBatch(ctx context.Context, inputs []usagedomain.EventInput) (int, error) {
	if len(inputs) == 0 {
		return 0, usagedomain.ErrEmptyBatch
	}

	now := time.Now().UTC()
	events := make([]*usagedomain.UsageEvent, 0, len(inputs))
	// resolved once per distinct customer in the batch
	known := make(map[snowflake.ID]bool)

	for _, input := range inputs {
		customerID, err := s.resolveCustomer(ctx, input.CustomerID, known)
		if err != nil {
			return 0, err
		}

		event, err := buildEvent(s.genID, customerID, input, now)
		if err != nil {
			return 0, err
		}
		events = append(events, event)
	}

	// single transaction: one bad insert rejects the whole batch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.InsertBatch(ctx, tx, events)
	})
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		for _, event := range events {
			s.metrics.IncUsageIngested(event.Feature)
		}
	}

	return len(events), nil
}

func (s *Service) Rollup(ctx context.Context, customerID string, start, end time.Time) (usagedomain.Rollup, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(customerID))
	if err != nil || id == 0 {
		return nil, usagedomain.ErrInvalidCustomer
	}
	// an empty window [t, t) is valid and sums to nothing
	if end.Before(start) {
		return nil, usagedomain.ErrInvalidRange
	}

	rows, err := s.repo.SumByFeature(ctx, s.db, id, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	rollup := make(usagedomain.Rollup, len(rows))
	for _, row := range rows {
		rollup[row.Feature] = row.Quantity
	}
	return rollup, nil
}

func (s *Service) QueryRange(ctx context.Context, customerID string, start, end time.Time) ([]usagedomain.UsageEvent, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(customerID))
	if err != nil || id == 0 {
		return nil, usagedomain.ErrInvalidCustomer
	}
	if end.Before(start) {
		return nil, usagedomain.ErrInvalidRange
	}
	return s.repo.FindByCustomerAndRange(ctx, s.db, id, start.UTC(), end.UTC())
}

func (s *Service) List(ctx context.Context, req usagedomain.ListUsageRequest) (usagedomain.ListUsageResponse, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return usagedomain.ListUsageResponse{}, usagedomain.ErrInvalidCustomer
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, customerID, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return usagedomain.ListUsageResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(event *usagedomain.UsageEvent) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: event.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	events := make([]usagedomain.UsageEvent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, *item)
	}

	resp := usagedomain.ListUsageResponse{UsageEvents: events}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) resolveCustomer(ctx context.Context, raw string, known map[snowflake.ID]bool) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, usagedomain.ErrInvalidCustomer
	}
	if known[id] {
		return id, nil
	}

	_, err = s.customerSvc.GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) || errors.Is(err, customerdomain.ErrInvalidID) {
			return 0, usagedomain.ErrCustomerNotFound
		}
		return 0, err
	}

	known[id] = true
	return id, nil
}

func buildEvent(genID *snowflake.Node, customerID snowflake.ID, input usagedomain.EventInput, now time.Time) (*usagedomain.UsageEvent, error) {
	feature := strings.TrimSpace(input.Feature)
	if feature == "" {
		return nil, usagedomain.ErrInvalidFeature
	}

	quantity := 1.0
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return nil, usagedomain.ErrInvalidQuantity
	}

	if input.RecordedAt.IsZero() {
		return nil, usagedomain.ErrInvalidRecordedAt
	}

	return &usagedomain.UsageEvent{
		ID:         genID.Generate(),
		CustomerID: customerID,
		Feature:    feature,
		Quantity:   quantity,
		RecordedAt: input.RecordedAt.UTC(),
		IngestedAt: now,
	}, nil
}
