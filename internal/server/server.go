package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tallyhq/tally/internal/billingrun"
	billingrundomain "github.com/tallyhq/tally/internal/billingrun/domain"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/customer"
	customerdomain "github.com/tallyhq/tally/internal/customer/domain"
	"github.com/tallyhq/tally/internal/invoice"
	invoicedomain "github.com/tallyhq/tally/internal/invoice/domain"
	obsmetrics "github.com/tallyhq/tally/internal/observability/metrics"
	"github.com/tallyhq/tally/internal/rating"
	"github.com/tallyhq/tally/internal/usage"
	usagedomain "github.com/tallyhq/tally/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	customer.Module,
	usage.Module,
	rating.Module,
	invoice.Module,
	billingrun.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *obsmetrics.Metrics, registry *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	customerSvc   customerdomain.Service
	usageSvc      usagedomain.Service
	invoiceSvc    invoicedomain.Service
	billingRunSvc billingrundomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	CustomerSvc   customerdomain.Service
	UsageSvc      usagedomain.Service
	InvoiceSvc    invoicedomain.Service
	BillingRunSvc billingrundomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		log:    p.Log.Named("http.server"),

		customerSvc:   p.CustomerSvc,
		usageSvc:      p.UsageSvc,
		invoiceSvc:    p.InvoiceSvc,
		billingRunSvc: p.BillingRunSvc,
	}
}

func (s *Server) RegisterRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/customers", s.CreateCustomer)
	v1.GET("/customers", s.ListCustomers)
	v1.GET("/customers/:id", s.GetCustomer)
	v1.POST("/customers/:id/events", s.IngestCustomerEvents)
	v1.GET("/customers/:id/events", s.ListCustomerEvents)
	v1.GET("/customers/:id/usage", s.GetUsage)
	v1.GET("/customers/:id/invoices", s.ListInvoices)

	v1.POST("/events/batch", s.IngestEventBatch)
	v1.POST("/invoices/run", s.RunBilling)
}
