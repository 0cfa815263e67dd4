package domain

import (
	"context"
	"errors"
	"time"

	"github.com/tallyhq/tally/pkg/db/pagination"
)

// EventInput is one event in an ingest batch. Quantity is optional and
// defaults to 1 when omitted.
type EventInput struct {
	CustomerID string    `json:"customer_id"`
	Feature    string    `json:"feature"`
	Quantity   *float64  `json:"quantity"`
	RecordedAt time.Time `json:"ts_event"`
}

type ListUsageRequest struct {
	CustomerID string
	PageToken  string
	PageSize   int32
}

type ListUsageResponse struct {
	pagination.PageInfo
	UsageEvents []UsageEvent `json:"usage_events"`
}

// Rollup maps a feature code to its summed quantity over a window.
type Rollup map[string]float64

type Service interface {
	// IngestBatch validates and stores a batch of events in a single
	// transaction. One invalid event rejects the whole batch.
	IngestBatch(context.Context, []EventInput) (int, error)

	// Rollup sums quantity per feature for events with
	// recorded_at in [start, end). Features without events are omitted.
	Rollup(ctx context.Context, customerID string, start, end time.Time) (Rollup, error)

	// QueryRange returns the raw events for a customer with
	// recorded_at in [start, end).
	QueryRange(ctx context.Context, customerID string, start, end time.Time) ([]UsageEvent, error)

	List(context.Context, ListUsageRequest) (ListUsageResponse, error)
}

var (
	ErrEmptyBatch        = errors.New("empty_batch")
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrInvalidFeature    = errors.New("invalid_feature")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidRecordedAt = errors.New("invalid_recorded_at")
	ErrInvalidRange      = errors.New("invalid_range")
)
