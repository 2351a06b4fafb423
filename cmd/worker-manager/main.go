// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"citation-intelligence/internal/analysis/gaps"
	"citation-intelligence/internal/analysis/patterns"
	"citation-intelligence/internal/cache"
	"citation-intelligence/internal/citation"
	"citation-intelligence/internal/common/camunda"
	"citation-intelligence/internal/common/config"
	"citation-intelligence/internal/common/database"
	"citation-intelligence/internal/common/logger"
	"citation-intelligence/internal/common/observability"
	"citation-intelligence/internal/common/validation"
	"citation-intelligence/pkg/registry"

	// Ingestion
	nc "citation-intelligence/internal/workers/ingestion/normalize-citations"

	// Data access
	qc "citation-intelligence/internal/workers/data-access/query-citations"
	sc "citation-intelligence/internal/workers/data-access/search-citations"

	// Analysis
	acp "citation-intelligence/internal/workers/analysis/analyze-citation-patterns"
	acmp "citation-intelligence/internal/workers/analysis/analyze-competitor-patterns"
	icg "citation-intelligence/internal/workers/analysis/identify-content-gaps"
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

type dependencies struct {
	zeebe *camunda.Client
	pg    *database.PostgresClient
	es    *database.ElasticsearchClient
	redis *database.RedisClient
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	deps := connect(cfg, zapLog)
	defer deps.pg.Close()
	defer deps.redis.Close()

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("input schema compilation failed", zap.Error(err))
	}

	resultCache := cache.New(deps.redis.GetClient(), cfg.Cache, log)
	patternEngine := patterns.NewAnalyzer(patterns.ConfigFrom(cfg.Analysis.Patterns), log)
	gapEngine := gaps.NewAnalyzer(gaps.ConfigFrom(cfg.Analysis.Gaps), log)

	workers := camunda.NewWorkerSet(deps.zeebe.GetClient(), zapLog)

	// --- Ingestion ---
	{
		wcfg := config.GetWorkerConfig(cfg, nc.TaskType)
		handler := nc.NewHandler(nc.LoadConfig(wcfg), citation.NewNormalizer(), validator, obs, log)
		handler.UseCommandSender(deps.zeebe)
		workers.Start(nc.TaskType, wcfg, handler.Handle)
	}

	// --- Data access ---
	{
		wcfg := config.GetWorkerConfig(cfg, qc.TaskType)
		handler := qc.NewHandler(qc.LoadConfig(wcfg), deps.pg.GetDB(), validator, obs, log)
		handler.UseCommandSender(deps.zeebe)
		workers.Start(qc.TaskType, wcfg, handler.Handle)
	}
	{
		wcfg := config.GetWorkerConfig(cfg, sc.TaskType)
		handler := sc.NewHandler(sc.LoadConfig(wcfg, cfg.Database.Elasticsearch), deps.es.Client, validator, obs, log)
		handler.UseCommandSender(deps.zeebe)
		workers.Start(sc.TaskType, wcfg, handler.Handle)
	}

	// --- Analysis ---
	{
		wcfg := config.GetWorkerConfig(cfg, acp.TaskType)
		handler := acp.NewHandler(acp.LoadConfig(wcfg), patternEngine, resultCache, validator, obs, log)
		handler.UseCommandSender(deps.zeebe)
		workers.Start(acp.TaskType, wcfg, handler.Handle)
	}
	{
		wcfg := config.GetWorkerConfig(cfg, acmp.TaskType)
		handler := acmp.NewHandler(acmp.LoadConfig(wcfg), patternEngine, validator, obs, log)
		handler.UseCommandSender(deps.zeebe)
		workers.Start(acmp.TaskType, wcfg, handler.Handle)
	}
	{
		wcfg := config.GetWorkerConfig(cfg, icg.TaskType)
		handler := icg.NewHandler(icg.LoadConfig(wcfg), gapEngine, resultCache, validator, obs, log)
		handler.UseCommandSender(deps.zeebe)
		workers.Start(icg.TaskType, wcfg, handler.Handle)
	}

	running := workers.Running()
	sort.Strings(running)
	zapLog.Info("workers registered", zap.Strings("taskTypes", running))

	srv := &http.Server{
		Addr:              cfg.App.HealthAddr,
		Handler:           newHealthMux(deps, workers),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	workers.Close()
	if err := deps.zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// connect opens every backing service, retrying while containers start.
func connect(cfg *config.Config, zapLog *zap.Logger) *dependencies {
	ctx := context.Background()
	deps := &dependencies{}

	err := retryWithBackoff(func() error {
		var err error
		deps.zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	err = retryWithBackoff(func() error {
		var err error
		deps.pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return deps.pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	err = retryWithBackoff(func() error {
		var err error
		deps.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return deps.es.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if ok, err := deps.es.IndexExists(ctx); err == nil && !ok {
		zapLog.Warn("citation index missing; searches will fail until it is created",
			zap.String("index", deps.es.Index))
	}
	zapLog.Info("Elasticsearch connected successfully")

	err = retryWithBackoff(func() error {
		var err error
		deps.redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return deps.redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	return deps
}

func newHealthMux(deps *dependencies, workers *camunda.WorkerSet) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"workers": workers.Running(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		record := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				ready = false
				return
			}
			checks[name] = "ok"
		}
		record("zeebe", deps.zeebe.HealthCheck(ctx))
		record("postgres", deps.pg.Ping(ctx))
		record("elasticsearch", deps.es.Ping(ctx))
		record("redis", deps.redis.Ping(ctx))

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
