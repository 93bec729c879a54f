// cmd/assessment-service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"assessment-engine/internal/assessment/catalog"
	"assessment-engine/internal/assessment/recommender"
	"assessment-engine/internal/assessment/recorder"
	"assessment-engine/internal/assessment/submission"
	"assessment-engine/internal/common/camunda"
	"assessment-engine/internal/common/config"
	"assessment-engine/internal/common/database"
	"assessment-engine/internal/common/logger"
	"assessment-engine/internal/common/observability"
	"assessment-engine/internal/transport/rest"
	"assessment-engine/internal/transport/rest/handler"
	"assessment-engine/pkg/registry"

	ags "assessment-engine/internal/workers/assessment/aggregate-scores"
	cpm "assessment-engine/internal/workers/assessment/calculate-performance-metrics"
	grc "assessment-engine/internal/workers/assessment/generate-recommendations"
	nrs "assessment-engine/internal/workers/assessment/normalize-responses"
	ras "assessment-engine/internal/workers/assessment/record-assessment-session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// pingFunc adapts a health check function to handler.Pinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assessment service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Rules ---
	rules, err := registry.LoadOrDefault(cfg.Assessment.RulesPath)
	if err != nil {
		zapLog.Fatal("rule table rejected", zap.Error(err))
	}
	var engineOpts []recommender.Option
	if cfg.Assessment.PrimaryCount > 0 {
		engineOpts = append(engineOpts, recommender.WithPrimaryCount(cfg.Assessment.PrimaryCount))
	}
	engine, err := recommender.NewEngine(rules, engineOpts...)
	if err != nil {
		zapLog.Fatal("recommendation engine init failed", zap.Error(err))
	}
	zapLog.Info("Rule table loaded", zap.String("rulesVersion", engine.RulesVersion()))

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	checks := map[string]handler.Pinger{
		"postgres": pg,
		"redis":    redis,
	}

	// --- Init Elasticsearch (optional) ---
	var esClient *elasticsearch.Client
	if cfg.Database.Elasticsearch.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, serving embedded catalog", zap.Error(err))
		} else {
			esClient = es.Client
			checks["elasticsearch"] = es
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Init Zeebe (optional) ---
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		checks["zeebe"] = pingFunc(zeebe.HealthCheck)
		zapLog.Info("Zeebe client connected successfully")
	}

	// --- Assessment components ---
	sessionRecorder := recorder.NewPostgresRecorder(pg.GetDB(), config.GetDuration(cfg.Assessment.RecorderTimeout), log)
	profiles := recorder.NewProfileStore(pg.GetDB(), redis.GetClient(), time.Duration(cfg.Assessment.ProfileCacheTTL)*time.Second, log)
	searcher := catalog.NewSearcher(esClient, cfg.Database.Elasticsearch.CareerPathIndex, 0, log)

	svcOpts := []submission.Option{
		submission.WithCatalog(searcher),
		submission.WithProfiles(profiles, cfg.Assessment.RequireProfile),
		submission.WithObservability(obs),
		submission.WithLogger(log),
	}
	if zeebe != nil {
		svcOpts = append(svcOpts, submission.WithPublisher(zeebe))
	}
	submissions, err := submission.NewService(engine, sessionRecorder, svcOpts...)
	if err != nil {
		zapLog.Fatal("submission service init failed", zap.Error(err))
	}

	// --- Workers ---
	var workers []worker.JobWorker
	if zeebe != nil {
		zc := zeebe.GetClient()
		start := func(taskType string, h worker.JobHandler) {
			if jw := camunda.StartWorker(zc, taskType, config.GetWorkerConfig(cfg, taskType), h, log); jw != nil {
				workers = append(workers, jw)
			}
		}

		start(nrs.TaskType, nrs.NewHandler(nrs.LoadConfig(config.GetWorkerConfig(cfg, nrs.TaskType)), rules, log).Handle)
		start(cpm.TaskType, cpm.NewHandler(cpm.LoadConfig(config.GetWorkerConfig(cfg, cpm.TaskType)), log).Handle)
		start(ags.TaskType, ags.NewHandler(ags.LoadConfig(config.GetWorkerConfig(cfg, ags.TaskType)), log).Handle)
		start(grc.TaskType, grc.NewHandler(grc.LoadConfig(config.GetWorkerConfig(cfg, grc.TaskType)), engine, profiles, searcher, log).Handle)
		start(ras.TaskType, ras.NewHandler(ras.LoadConfig(config.GetWorkerConfig(cfg, ras.TaskType)), sessionRecorder, log).Handle)

		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API ---
	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: rest.NewRouter(&rest.Container{
			Submissions: submissions,
			Catalog:     searcher,
			Checks:      checks,
			Version:     cfg.App.Version,
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      log,
		}),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}

	zapLog.Info("Assessment service stopped")
}
