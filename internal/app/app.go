// Package app wires the course-advisor service together: configuration,
// logging, catalog store, reference-data manager, embedding provider,
// the tool registry, and the HTTP server with its background jobs.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/coursecompass/advisor-go/internal/catalog"
	"github.com/coursecompass/advisor-go/internal/config"
	"github.com/coursecompass/advisor-go/internal/embed"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/logger"
	"github.com/coursecompass/advisor-go/internal/metrics"
	"github.com/coursecompass/advisor-go/internal/randutil"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/ratelimit"
	"github.com/coursecompass/advisor-go/internal/refdata"
	"github.com/coursecompass/advisor-go/internal/resolve"
	"github.com/coursecompass/advisor-go/internal/sentry"
	"github.com/coursecompass/advisor-go/internal/tools"
	"github.com/coursecompass/advisor-go/internal/tools/core"
	"github.com/coursecompass/advisor-go/internal/tools/coursecat"
	"github.com/coursecompass/advisor-go/internal/tools/degrees"
	"github.com/coursecompass/advisor-go/internal/tools/feedbacktools"
	"github.com/coursecompass/advisor-go/internal/tools/instructors"
	"github.com/coursecompass/advisor-go/internal/warmup"
)

// Application holds all long-lived components of the service.
type Application struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *catalog.DB
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	refdata  *refdata.Manager
	embedder embed.Embedder
	tools    *tools.Registry
	limiter  *ratelimit.KeyedLimiter
	ready    *warmup.ReadinessState
	server   *http.Server
	wg       sync.WaitGroup
}

// Initialize builds the application from configuration. Components are
// constructed in dependency order; any failure aborts startup.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterStackToken:    betterStackToken(cfg),
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log = log.WithField("service", cfg.ServerName)
	if id := instanceID(cfg); id != "" {
		log = log.WithField("instance_id", id)
	}
	slog.SetDefault(log.Logger)

	if cfg.SentryEnabled {
		if err := sentry.Initialize(sentry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			Release:          cfg.SentryRelease,
			SampleRate:       cfg.SentrySampleRate,
			TracesSampleRate: cfg.SentryTracesSampleRate,
		}); err != nil {
			return nil, fmt.Errorf("initialize sentry: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	db, err := catalog.New(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMetrics(m)

	refman, err := newRefDataManager(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	refman.SetMetrics(m)

	embedder, err := embed.NewFromConfig(ctx, cfg.Embedding)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	if ms, ok := embedder.(interface{ SetMetrics(embed.MetricsRecorder) }); ok {
		ms.SetMetrics(m)
	}

	resolver := resolve.New(refman)
	resolver.SetMetrics(m)
	ranker := rank.New(embedder)
	ranker.SetMetrics(m)
	aggregator := feedback.NewAggregator()
	aggregator.SetMetrics(m)

	deps := tools.Deps{
		Store:       db,
		Snapshot:    refman,
		Resolver:    resolver,
		Ranker:      ranker,
		Aggregator:  aggregator,
		Rand:        randutil.Default(),
		Metrics:     m,
		Logger:      log,
		CurrentTerm: cfg.CurrentTerm,
		CurrentYear: cfg.CurrentYear,
		TopK:        cfg.RankTopK,
	}

	toolRegistry := tools.NewRegistry()
	toolRegistry.Add(coursecat.NewHandler(deps).Tools()...)
	toolRegistry.Add(feedbacktools.NewHandler(deps).Tools()...)
	toolRegistry.Add(instructors.NewHandler(deps).Tools()...)
	toolRegistry.Add(degrees.NewHandler(deps).Tools()...)
	toolRegistry.Add(core.NewHandler(deps).Tools()...)

	var limiter *ratelimit.KeyedLimiter
	if cfg.RateLimitEnabled {
		limiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
			Name:          "tools",
			Burst:         cfg.RateLimitBurst,
			RefillRate:    cfg.RateLimitRefill,
			CleanupPeriod: config.RateLimiterCleanupInterval,
			Metrics:       m,
		})
	}

	app := &Application{
		cfg:      cfg,
		log:      log,
		db:       db,
		metrics:  m,
		registry: registry,
		refdata:  refman,
		embedder: embedder,
		tools:    toolRegistry,
		limiter:  limiter,
		ready:    warmup.NewReadinessState(config.ReadinessGracePeriod),
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.SentryEnabled {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestLoggingMiddleware(log))
	app.registerRoutes(router)

	app.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.ServerHTTPRead,
		WriteTimeout: config.ServerHTTPWrite,
		IdleTimeout:  config.ServerHTTPIdle,
	}

	return app, nil
}

// newRefDataManager picks the reference-data source from configuration:
// a local directory of per-department tables, or a compressed snapshot
// in object storage.
func newRefDataManager(ctx context.Context, cfg *config.Config) (*refdata.Manager, error) {
	if !cfg.RefData.BucketEnabled {
		dir := cfg.RefData.Dir
		return refdata.NewManager("dir", func(context.Context) (*refdata.Snapshot, error) {
			return refdata.LoadDir(dir)
		}), nil
	}

	store, err := refdata.NewObjectStore(ctx, refdata.ObjectStoreConfig{
		Endpoint:    cfg.RefData.Endpoint,
		AccessKeyID: cfg.RefData.AccessKeyID,
		SecretKey:   cfg.RefData.SecretAccessKey,
		BucketName:  cfg.RefData.BucketName,
		SnapshotKey: cfg.RefData.SnapshotKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create refdata object store: %w", err)
	}

	timeout := cfg.RefData.RequestTimeout
	return refdata.NewManager("bucket", func(ctx context.Context) (*refdata.Snapshot, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return store.FetchSnapshot(ctx)
	}), nil
}

// Run starts the background jobs and the HTTP server, then blocks until
// a termination signal arrives and shutdown completes.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		cancel()
		a.wg.Wait()
		a.cleanup()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.log.Info("shutdown signal received", "signal", sig.String())
	}

	cancel()
	a.wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Error("server shutdown failed")
	}

	a.cleanup()
	a.log.Info("shutdown complete")
	return nil
}

// startBackgroundJobs launches the initial reference-data load and the
// periodic reload loop. Readiness flips once the first load succeeds.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		loadCtx, loadCancel := context.WithTimeout(ctx, config.RefDataRequest)
		err := a.refdata.Reload(loadCtx)
		loadCancel()
		if err != nil {
			a.log.WithError(err).Error("initial reference data load failed")
		} else {
			a.ready.MarkReady()
			a.log.Info("initial reference data load complete",
				"departments", a.refdata.Current().Len())
		}

		a.refdata.Run(ctx, a.cfg.RefData.PollInterval)
	}()
}

func (a *Application) cleanup() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if err := a.db.Close(); err != nil {
		a.log.WithError(err).Error("catalog close failed")
	}
	sentry.Flush(2 * time.Second)
}

func betterStackToken(cfg *config.Config) string {
	if !cfg.BetterStackEnabled {
		return ""
	}
	return cfg.BetterStackToken
}

func instanceID(cfg *config.Config) string {
	if cfg.InstanceID != "" {
		return cfg.InstanceID
	}
	host, err := os.Hostname()
	if err != nil {
		return ""
	}
	return host
}
