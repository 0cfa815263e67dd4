// Package domain contains persistence models for raw usage ingestion.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UsageEvent stores a single unit of metered activity. Rows are append-only.
type UsageEvent struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index:idx_usage_events_customer_recorded" json:"customer_id"`
	Feature    string       `gorm:"type:text;not null" json:"feature"`
	Quantity   float64      `gorm:"not null" json:"quantity"`
	RecordedAt time.Time    `gorm:"not null;index:idx_usage_events_customer_recorded" json:"ts_event"`
	IngestedAt time.Time    `gorm:"not null" json:"ts_ingested"`
}

// TableName sets the database table name.
func (UsageEvent) TableName() string { return "usage_events" }
