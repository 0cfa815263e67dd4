// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Invoice represents a generated invoice for one customer and period.
// The period is half-open: [PeriodStart, PeriodEnd).
type Invoice struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_invoices_customer_period" json:"customer_id"`
	PeriodStart time.Time         `gorm:"not null;uniqueIndex:ux_invoices_customer_period" json:"period_start"`
	PeriodEnd   time.Time         `gorm:"not null;uniqueIndex:ux_invoices_customer_period" json:"period_end"`
	Total       decimal.Decimal   `gorm:"type:numeric;not null" json:"total"`
	GeneratedAt time.Time         `gorm:"not null" json:"generated_at"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	LineItems   []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceLineItem represents a line on an invoice.
type InvoiceLineItem struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Feature   string          `gorm:"type:text;not null" json:"feature"`
	Quantity  float64         `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	Amount    decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceLineItem) TableName() string { return "invoice_line_items" }
