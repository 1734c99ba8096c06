// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"slide-composer/internal/common/camunda"
	"slide-composer/internal/common/config"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/observability"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/server"
	"slide-composer/internal/store"

	bp "slide-composer/internal/workers/composition/build-prompt"
	cd "slide-composer/internal/workers/composition/compose-deck"
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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs := observability.New("slide-composer-worker")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Composition engine: template and skeleton load is fatal ---
	eng, err := engine.FromConfig(cfg.Composer, obs, log)
	if err != nil {
		zapLog.Fatal("composition engine init failed", zap.Error(err))
	}
	zapLog.Info("Composition engine ready",
		zap.String("template", eng.Template().Name),
		zap.String("mode", string(eng.Mode())),
		zap.Strings("slideTypes", eng.Registry().Tags()),
	)

	// --- Persistence sink, redis with retry ---
	sink, err := store.New(cfg.Store, cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("store init failed", zap.Error(err))
	}
	if rs, ok := sink.(*store.RedisSink); ok {
		err = retryWithBackoff(func() error { return rs.Ping(ctx) }, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rs.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Zeebe Client with retry, only when a worker needs it ---
	var (
		zeebeClient zbc.Client
		workers     []*camunda.Worker
	)
	if anyWorkerEnabled(cfg) {
		zeebeClient, err = camunda.Dial(ctx, cfg.Camunda, camunda.DefaultRetryConfig, zapLog)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		// --- Workers ---
		cdCfg := cd.LoadConfig()
		cdCfg.DefaultFormat = cfg.Composer.OutputFormat
		if wcfg := cfg.Workers[cd.TaskType]; wcfg.Timeout > 0 {
			cdCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		cdHandler := cd.NewHandler(cdCfg, eng, sink, log)
		workers = append(workers, camunda.StartWorker(zeebeClient, cd.TaskType, cfg.Workers[cd.TaskType], cdHandler.Handle, zapLog))

		bpCfg := bp.LoadConfig()
		if wcfg := cfg.Workers[bp.TaskType]; wcfg.Timeout > 0 {
			bpCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		bpHandler := bp.NewHandler(bpCfg, eng.Registry(), log)
		workers = append(workers, camunda.StartWorker(zeebeClient, bp.TaskType, cfg.Workers[bp.TaskType], bpHandler.Handle, zapLog))
	}

	// --- Preview API, health and metrics ---
	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	var ready server.ReadyFunc
	if zeebeClient != nil {
		requestTimeout := time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond
		ready = func(ctx context.Context) error {
			return camunda.HealthCheck(ctx, zeebeClient, requestTimeout)
		}
	}
	var handler http.Handler = server.HealthRouter(ready)
	if cfg.Server.Enabled {
		handler = server.NewHandler(eng, sink, log).WithReadiness(ready).WithImagesRoot(cfg.Server.ImagesRoot).Router()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", addr), zap.Bool("previewApi", cfg.Server.Enabled))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
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
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func anyWorkerEnabled(cfg *config.Config) bool {
	for _, w := range cfg.Workers {
		if w.Enabled {
			return true
		}
	}
	return false
}
