package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/pkg/db/pagination"
	"gorm.io/gorm"
)

// FeatureTotal is one row of a per-feature aggregation.
type FeatureTotal struct {
	Feature  string
	Quantity float64
}

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, events []*UsageEvent) error
	SumByFeature(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]FeatureTotal, error)
	FindByCustomerAndRange(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]UsageEvent, error)
	List(ctx context.Context, db *gorm.DB, customerID snowflake.ID, page pagination.Pagination) ([]*UsageEvent, error)
}
