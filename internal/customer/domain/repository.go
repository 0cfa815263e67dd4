package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tallyhq/tally/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Customer, error)
	ListIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
}
