package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/haulfile/internal"
	"github.com/dukerupert/haulfile/internal/address"
	"github.com/dukerupert/haulfile/internal/billing"
	"github.com/dukerupert/haulfile/internal/events"
	"github.com/dukerupert/haulfile/internal/filing"
	"github.com/dukerupert/haulfile/internal/handler/api"
	"github.com/dukerupert/haulfile/internal/hvut"
	"github.com/dukerupert/haulfile/internal/middleware"
	"github.com/dukerupert/haulfile/internal/postgres"
	"github.com/dukerupert/haulfile/internal/pricing"
	"github.com/dukerupert/haulfile/internal/provider"
	"github.com/dukerupert/haulfile/internal/router"
	"github.com/dukerupert/haulfile/internal/routes"
	"github.com/dukerupert/haulfile/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Error tracking
	flushSentry, err := telemetry.InitSentry(cfg.Sentry, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	health := map[string]api.Pinger{}

	// Filing store for duplicate detection
	var detector *filing.Detector
	if cfg.DatabaseURL != "" {
		pool, err := openDatabase(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := postgres.NewFilingStore(pool, logger)
		detector = filing.NewDetector(store)
		health["postgres"] = store
	} else {
		logger.Warn().Msg("DATABASE_URL not set, duplicate detection disabled")
	}

	// Sales tax on the service fee
	salesTax, err := provider.NewTaxCalculator(&provider.TaxConfig{
		Name:        cfg.Tax.Provider,
		DefaultRate: cfg.Tax.DefaultRate,
		StateRates:  cfg.Tax.StateRates,
		Stripe: billing.StripeConfig{
			APIKey:  cfg.Stripe.SecretKey,
			TaxCode: cfg.Stripe.TaxCode,
			BaseURL: cfg.Stripe.BaseURL,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tax calculator: %w", err)
	}
	logger.Info().Str("provider", string(cfg.Tax.Provider)).Msg("Tax calculator initialized")

	table, err := hvut.LookupTable(cfg.Tax.TableVersion)
	if err != nil {
		return err
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	httpMetrics := middleware.NewMetrics("haulfile", registry, registry)
	businessMetrics := telemetry.NewBusinessMetrics("haulfile", registry)

	engine, err := pricing.NewEngine(pricing.Deps{
		Table:    table,
		SalesTax: salesTax,
		Fees:     pricing.FeePolicy{SuspendedFleetFee: cfg.Tax.SuspendedFleetFee},
		Logger:   logger,
		Recorder: businessMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize pricing engine: %w", err)
	}
	logger.Info().Str("table_version", table.Version()).Msg("Pricing engine initialized")

	// Events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		nats, err := events.NewNATSPublisher(events.NATSConfig{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect event bus: %w", err)
		}
		publisher = nats
		logger.Info().Str("prefix", cfg.NATS.SubjectPrefix).Msg("NATS publisher connected")
	}
	publisher = events.Observe(publisher, businessMetrics.RecordEvent)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain event publisher")
		}
	}()

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	apiDeps := routes.APIDeps{
		Pricing: api.NewPricingHandler(engine, address.NewBasicValidator(), publisher, businessMetrics),
	}
	if detector != nil {
		apiDeps.Filings = api.NewFilingsHandler(detector, publisher, businessMetrics)
	}
	if cfg.RateLimit.Enabled {
		limiterConfig := middleware.DefaultRateLimiterConfig()
		limiterConfig.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limiterConfig.BurstSize = cfg.RateLimit.Burst
		apiDeps.RateLimit = middleware.RateLimit(limiterConfig)
	}

	opsDeps := routes.OpsDeps{
		Health:  api.NewHealthHandler(health),
		Metrics: httpMetrics.Handler(),
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		telemetry.SentryMiddleware(),
		router.Recovery(logger),
		middleware.RequestID,
		middleware.FilerID,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
		httpMetrics.Middleware,
		router.CORS(cfg.CORS.AllowedOrigins),
	)

	routes.RegisterAPIRoutes(r, apiDeps)
	routes.RegisterOpsRoutes(r, opsDeps)

	for _, route := range r.Routes() {
		logger.Debug().Str("route", route).Msg("registered")
	}

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("address", srv.Addr).Msg("Starting server")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openDatabase runs migrations over database/sql and returns the pgx pool
// the application reads through.
func openDatabase(ctx context.Context, url string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	logger.Info().Msg("Connecting to database...")
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info().Msg("Running database migrations...")
	if err := internal.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info().Msg("Database migrations completed successfully")

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
