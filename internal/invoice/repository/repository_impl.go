package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) DeleteByCustomerAndPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, periodStart, periodEnd time.Time) error {
	var existing domain.Invoice
	err := db.WithContext(ctx).
		Where("customer_id = ? AND period_start = ? AND period_end = ?", customerID, periodStart, periodEnd).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	// line items first so the header is never left with orphans
	if err := db.WithContext(ctx).
		Where("invoice_id = ?", existing.ID).
		Delete(&domain.InvoiceLineItem{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&domain.Invoice{}, existing.ID).Error
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Omit("LineItems").Create(invoice).Error
}

func (r *repo) InsertLineItems(ctx context.Context, db *gorm.DB, items []*domain.InvoiceLineItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(items).Error
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := db.WithContext(ctx).
		Preload("LineItems").
		Where("customer_id = ?", customerID).
		Order("generated_at DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
