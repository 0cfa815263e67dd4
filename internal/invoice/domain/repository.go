package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// DeleteByCustomerAndPeriod removes an existing invoice for the
	// period, line items first.
	DeleteByCustomerAndPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, periodStart, periodEnd time.Time) error
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertLineItems(ctx context.Context, db *gorm.DB, items []*InvoiceLineItem) error
	ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Invoice, error)
}
