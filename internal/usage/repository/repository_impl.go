package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/usage/domain"
	"github.com/tallyhq/tally/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, events []*domain.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(events).Error
}

func (r *repo) SumByFeature(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]domain.FeatureTotal, error) {
	var rows []domain.FeatureTotal
	err := db.WithContext(ctx).Raw(
		`SELECT feature, SUM(quantity) AS quantity
		 FROM usage_events
		 WHERE customer_id = ? AND recorded_at >= ? AND recorded_at < ?
		 GROUP BY feature`,
		customerID,
		start,
		end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindByCustomerAndRange(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]domain.UsageEvent, error) {
	var events []domain.UsageEvent
	err := db.WithContext(ctx).
		Where("customer_id = ? AND recorded_at >= ? AND recorded_at < ?", customerID, start, end).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, customerID snowflake.ID, page pagination.Pagination) ([]*domain.UsageEvent, error) {
	stmt := db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id ASC")

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		after, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("id > ?", after)
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}

	var events []*domain.UsageEvent
	if err := stmt.Limit(limit + 1).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
