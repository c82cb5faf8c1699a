// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"advisory-workers/internal/common/camunda"
	"advisory-workers/internal/common/config"
	"advisory-workers/internal/common/database"
	"advisory-workers/internal/common/logger"
	"advisory-workers/internal/common/observability"
	generateadvice "advisory-workers/internal/workers/advisory/generate-advice"
)

// connectWithBackoff retries op with exponential backoff until it succeeds or
// maxElapsed passes.
func connectWithBackoff(name string, maxElapsed time.Duration, log *zap.Logger, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 2 * time.Second
	exp.MaxElapsedTime = maxElapsed

	notify := func(err error, next time.Duration) {
		log.Warn(name+" failed, retrying", zap.Error(err), zap.Duration("nextRetryIn", next))
	}
	if err := backoff.RetryNotify(op, exp, notify); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Info(name + " connected")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}
	if err := config.ValidateForWorkers(cfg); err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("invalid worker configuration", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting worker manager",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.App.Name, zapLog)
	tp := observability.NewTracerProvider()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var zeebe *camunda.Client
	err = connectWithBackoff("zeebe", 2*time.Minute, zapLog, func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	})
	if err != nil {
		zapLog.Fatal("zeebe unavailable", zap.Error(err))
	}
	defer zeebe.Close()

	var pg *database.PostgresClient
	err = connectWithBackoff("postgres", 2*time.Minute, zapLog, func() error {
		var err error
		if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pg.Close()

	var es *database.ElasticsearchClient
	err = connectWithBackoff("elasticsearch", 2*time.Minute, zapLog, func() error {
		var err error
		if es, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
			return err
		}
		return es.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("elasticsearch unavailable", zap.Error(err))
	}

	var redis *database.RedisClient
	err = connectWithBackoff("redis", time.Minute, zapLog, func() error {
		var err error
		if redis, err = database.NewRedis(cfg.Database.Redis); err != nil {
			return err
		}
		return redis.Ping(ctx)
	})
	if err != nil {
		zapLog.Fatal("redis unavailable", zap.Error(err))
	}
	defer redis.Close()

	deps, err := buildDeps(ctx, cfg, pg, es, redis, log)
	if err != nil {
		zapLog.Fatal("failed to build dependencies", zap.Error(err))
	}
	if ok := deps.orchestrator.Probe(ctx); !ok {
		zapLog.Warn("generation backend not reachable at startup, serving fallback answers")
	}

	workers := registerWorkers(zeebe.GetClient(), cfg, deps, obs, zapLog, log)
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newServeMux(zeebe, deps.orchestrator),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("health and metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("health server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutdown signal received, stopping workers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("health server shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("tracer shutdown", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("metrics shutdown", zap.Error(err))
	}
	zapLog.Info("worker manager stopped")
}

func newServeMux(zeebe *camunda.Client, orch *generateadvice.Orchestrator) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	// Ready means jobs can be served. Generation being down only changes
	// which answer path is used, so it is reported but not fatal.
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status, code = "zeebe unreachable", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]string{
			"status":     status,
			"generation": string(orch.State()),
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
