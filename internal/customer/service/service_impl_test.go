package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/tallyhq/tally/internal/customer/domain"
	"github.com/tallyhq/tally/internal/customer/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCustomerService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateCustomer(t *testing.T) {
	svc := newCustomerService(t)

	created, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Acme",
		Email: "a@x.com",
	})
	assert.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Acme", created.Name)
	assert.Equal(t, "UTC", created.Timezone)

	found, err := svc.GetByID(context.Background(), created.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, created.Email, found.Email)
}

func TestCreateCustomer_Validation(t *testing.T) {
	svc := newCustomerService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Acme", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	svc := newCustomerService(t)

	_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Acme", Email: "a@x.com"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Other", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestGetCustomer_NotFound(t *testing.T) {
	svc := newCustomerService(t)

	_, err := svc.GetByID(context.Background(), "1234567890123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListCustomers_CursorPagination(t *testing.T) {
	svc := newCustomerService(t)

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "c", Email: email})
		require.NoError(t, err)
	}

	first, err := svc.List(context.Background(), domain.ListCustomerRequest{PageSize: 2})
	assert.NoError(t, err)
	assert.Len(t, first.Customers, 2)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(context.Background(), domain.ListCustomerRequest{
		PageSize:  2,
		PageToken: first.NextPageToken,
	})
	assert.NoError(t, err)
	assert.Len(t, second.Customers, 1)
	assert.False(t, second.HasMore)
	assert.NotEqual(t, first.Customers[0].ID, second.Customers[0].ID)
}
