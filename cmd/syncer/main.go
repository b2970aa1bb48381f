package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	stdsync "sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	// Internal packages
	"github.com/seu-repo/fleetops/internal/adapter/flotapi"
	"github.com/seu-repo/fleetops/internal/adapter/vault"
	"github.com/seu-repo/fleetops/internal/domain"
	"github.com/seu-repo/fleetops/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/fleetops/internal/observability/telemetry"
	"github.com/seu-repo/fleetops/internal/service/sync"
	"github.com/seu-repo/fleetops/pkg/config"
)

const (
	serviceName    = "fleetops-syncer"
	serviceVersion = "v1.0.0"
)

func main() {
	var (
		daemon = flag.Bool("daemon", false, "run continuously, exposing health and metrics over HTTP")
		period = flag.String("period", string(domain.PeriodPreviousWeek), "period to sync: ayer, semana-anterior, semana-actual or personalizado")
		from   = flag.String("from", "", "custom period start date (YYYY-MM-DD)")
		to     = flag.String("to", "", "custom period end date (YYYY-MM-DD)")
	)
	flag.Parse()

	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting FleetOps Syncer",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Platform credentials from Vault, when enabled
	if cfg.Vault.Enabled {
		sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			logger.Fatal("Failed to connect to Vault", zap.Error(err))
		}
		creds, err := sm.GetPlatformCredentials()
		if err != nil {
			logger.Fatal("Failed to read platform credentials", zap.Error(err))
		}
		cfg.Platform.ClientID = creds.ClientID
		cfg.Platform.ClientSecret = creds.ClientSecret
		cfg.Platform.Username = creds.Username
		cfg.Platform.Password = creds.Password
		logger.Info("Platform credentials loaded from Vault")
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.Tracing.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, serviceVersion, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Reference timezone for period arithmetic
	loc, err := time.LoadLocation(cfg.Sync.Timezone)
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.String("timezone", cfg.Sync.Timezone), zap.Error(err))
	}

	// 6. Outbound HTTP through the circuit breaker
	breakerSettings := circuitbreaker.DefaultSettings("fleet-platform")
	if cfg.Platform.RequestTimeout > 0 {
		breakerSettings.Timeout = cfg.Platform.RequestTimeout
	}
	if cfg.CircuitBreaker.FailureThreshold > 0 {
		breakerSettings.FailureThreshold = cfg.CircuitBreaker.FailureThreshold
	}
	httpClient := circuitbreaker.NewHTTPClient(breakerSettings, logger)

	// 7. Platform session and GraphQL client
	session := flotapi.NewSessionManager(cfg.Platform, httpClient, logger)
	client := flotapi.NewClient(cfg.Platform.GraphQLURL, httpClient, session, logger)

	// 8. Acquisition components
	enumerator := flotapi.NewEnumerator(client, cfg.Sync.PageSize, logger)
	metricsSource := flotapi.NewMetricsSource(client, logger)
	assetCatalog := flotapi.NewAssetCatalog(client, logger)
	aggregator := sync.NewAggregator(metricsSource, assetCatalog, cfg.Sync.MaxConcurrent, logger)
	orchestrator := sync.NewOrchestrator(enumerator, aggregator, sync.Options{
		BatchSize:  cfg.Sync.BatchSize,
		RunTimeout: cfg.Sync.RunTimeout,
		Location:   loc,
	}, logger)

	desc, err := periodFromFlags(*period, *from, *to, loc)
	if err != nil {
		logger.Fatal("Invalid period flags", zap.Error(err))
	}

	if !*daemon {
		runOnce(orchestrator, desc, logger)
		return
	}

	runDaemon(cfg, orchestrator, desc, logger)
}

// periodFromFlags maps CLI flags onto a period descriptor. Custom
// periods take whole local days: from at 00:00:00 through to at
// 23:59:59.999.
func periodFromFlags(period, from, to string, loc *time.Location) (domain.PeriodDescriptor, error) {
	kind := domain.PeriodKind(period)
	if kind != domain.PeriodCustom {
		if from != "" || to != "" {
			return domain.PeriodDescriptor{}, fmt.Errorf("-from/-to require -period=%s", domain.PeriodCustom)
		}
		return domain.PeriodDescriptor{Kind: kind}, nil
	}

	start, err := time.ParseInLocation("2006-01-02", from, loc)
	if err != nil {
		return domain.PeriodDescriptor{}, fmt.Errorf("invalid -from date: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02", to, loc)
	if err != nil {
		return domain.PeriodDescriptor{}, fmt.Errorf("invalid -to date: %w", err)
	}
	return domain.PeriodDescriptor{
		Kind:  domain.PeriodCustom,
		Start: domain.DayStart(start, loc),
		End:   domain.DayEnd(end, loc),
	}, nil
}

// runOnce executes a single sync and writes the report as JSON to stdout.
func runOnce(orchestrator *sync.Orchestrator, desc domain.PeriodDescriptor, logger *zap.Logger) {
	report, err := orchestrator.Run(context.Background(), desc, func(processed, estimatedTotal, newInBatch int) {
		logger.Info("Sync progress",
			zap.Int("processed", processed),
			zap.Int("estimated_total", estimatedTotal),
			zap.Int("new_in_batch", newInBatch),
		)
	})
	if err != nil {
		logger.Fatal("Sync run failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Fatal("Failed to encode report", zap.Error(err))
	}
}

// runDaemon syncs on an interval and serves health, metrics and the
// last report over HTTP until interrupted.
func runDaemon(cfg *config.Config, orchestrator *sync.Orchestrator, desc domain.PeriodDescriptor, logger *zap.Logger) {
	var mu stdsync.RWMutex
	var lastReport *domain.RunReport

	runAndStore := func() {
		report, err := orchestrator.Run(context.Background(), desc, nil)
		if err != nil {
			logger.Error("Scheduled sync run failed", zap.Error(err))
			return
		}
		mu.Lock()
		lastReport = report
		mu.Unlock()
	}

	interval := cfg.Sync.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		runAndStore()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runAndStore()
			}
		}
	}()

	// HTTP surface
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	// Adapt net/http handler to fasthttp for Fiber
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	app.Get("/runs/last", func(c *fiber.Ctx) error {
		mu.RLock()
		report := lastReport
		mu.RUnlock()
		if report == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no completed run yet"})
		}
		return c.JSON(report)
	})

	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down syncer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Syncer exited gracefully")
}
