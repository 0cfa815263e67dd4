package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	billingrunservice "github.com/tallyhq/tally/internal/billingrun/service"
	"github.com/tallyhq/tally/internal/config"
	customerdomain "github.com/tallyhq/tally/internal/customer/domain"
	customerrepository "github.com/tallyhq/tally/internal/customer/repository"
	customerservice "github.com/tallyhq/tally/internal/customer/service"
	invoicedomain "github.com/tallyhq/tally/internal/invoice/domain"
	invoicerepository "github.com/tallyhq/tally/internal/invoice/repository"
	invoiceservice "github.com/tallyhq/tally/internal/invoice/service"
	ratingservice "github.com/tallyhq/tally/internal/rating/service"
	usagedomain "github.com/tallyhq/tally/internal/usage/domain"
	usagerepository "github.com/tallyhq/tally/internal/usage/repository"
	usageservice "github.com/tallyhq/tally/internal/usage/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&usagedomain.UsageEvent{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceLineItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()

	customerSvc := customerservice.New(customerservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  customerrepository.Provide(),
	})
	usageSvc := usageservice.NewService(usageservice.ServiceParam{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Repo:        usagerepository.Provide(),
		CustomerSvc: customerSvc,
	})
	ratingSvc := ratingservice.NewService(ratingservice.ServiceParam{Log: logger})
	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  invoicerepository.Provide(),
	})
	billingRunSvc := billingrunservice.NewService(billingrunservice.ServiceParam{
		Log:         logger,
		CustomerSvc: customerSvc,
		UsageSvc:    usageSvc,
		RatingSvc:   ratingSvc,
		InvoiceSvc:  invoiceSvc,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:           engine,
		Cfg:           config.Config{AppName: "tally"},
		Log:           logger,
		CustomerSvc:   customerSvc,
		UsageSvc:      usageSvc,
		InvoiceSvc:    invoiceSvc,
		BillingRunSvc: billingRunSvc,
	})
	srv.RegisterRoutes()
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func createTestCustomer(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/v1/customers",
		fmt.Sprintf(`{"name":"Acme","email":%q}`, email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created.ID
}

func TestHTTP_CreateCustomer(t *testing.T) {
	srv := newTestServer(t)

	id := createTestCustomer(t, srv, "a@x.com")
	assert.NotEmpty(t, id)

	rec := doRequest(t, srv, http.MethodGet, "/v1/customers/"+id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTP_CreateCustomer_DuplicateEmailConflicts(t *testing.T) {
	srv := newTestServer(t)

	createTestCustomer(t, srv, "a@x.com")
	rec := doRequest(t, srv, http.MethodPost, "/v1/customers", `{"name":"Other","email":"a@x.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

func TestHTTP_GetCustomer_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/v1/customers/1234567890123456789", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTP_IngestAndUsage(t *testing.T) {
	srv := newTestServer(t)
	id := createTestCustomer(t, srv, "a@x.com")

	rec := doRequest(t, srv, http.MethodPost, "/v1/customers/"+id+"/events",
		`[{"feature":"api_calls","quantity":10,"ts_event":"2025-09-16T21:05:00Z"},
		  {"feature":"storage","quantity":1,"ts_event":"2025-09-16T21:05:00Z"}]`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"accepted":2}`, rec.Body.String())

	rec = doRequest(t, srv, http.MethodGet,
		"/v1/customers/"+id+"/usage?start=2025-09-01T00:00:00Z&end=2025-10-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rollup map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rollup))
	assert.Equal(t, 10.0, rollup["api_calls"])
	assert.Equal(t, 1.0, rollup["storage"])
}

func TestHTTP_IngestNegativeQuantity(t *testing.T) {
	srv := newTestServer(t)
	id := createTestCustomer(t, srv, "a@x.com")

	rec := doRequest(t, srv, http.MethodPost, "/v1/customers/"+id+"/events",
		`[{"feature":"api_calls","quantity":-5,"ts_event":"2025-09-16T21:05:00Z"}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_quantity")
}

func TestHTTP_BillingRunAndInvoices(t *testing.T) {
	srv := newTestServer(t)
	id := createTestCustomer(t, srv, "a@x.com")

	rec := doRequest(t, srv, http.MethodPost, "/v1/events/batch",
		fmt.Sprintf(`[{"customer_id":%q,"feature":"api_calls","quantity":10,"ts_event":"2025-09-16T21:05:00Z"},
		  {"customer_id":%q,"feature":"storage","quantity":1,"ts_event":"2025-09-16T21:05:00Z"}]`, id, id))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, srv, http.MethodPost, "/v1/invoices/run?period=2025-09&unit_price=0.01", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var summary struct {
		InvoicesGenerated int `json:"invoices_generated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.InvoicesGenerated)

	rec = doRequest(t, srv, http.MethodGet, "/v1/customers/"+id+"/invoices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Invoices []struct {
			Total     string `json:"total"`
			LineItems []struct {
				Feature string `json:"feature"`
				Amount  string `json:"amount"`
			} `json:"line_items"`
		} `json:"invoices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, "0.11", resp.Invoices[0].Total)
	require.Len(t, resp.Invoices[0].LineItems, 2)
	assert.Equal(t, "api_calls", resp.Invoices[0].LineItems[0].Feature)
	assert.Equal(t, "0.1", resp.Invoices[0].LineItems[0].Amount)
}

func TestHTTP_BillingRunBadPeriod(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/invoices/run?period=September&unit_price=0.01", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_period")
}

func TestHTTP_BillingRunNegativePrice(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/invoices/run?period=2025-09&unit_price=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_unit_price")
}
