package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/clinic-ledger/internal/app"
	"github.com/jwalitptl/clinic-ledger/internal/config"
	"github.com/jwalitptl/clinic-ledger/pkg/logger"
	"github.com/jwalitptl/clinic-ledger/pkg/messaging"
	"github.com/jwalitptl/clinic-ledger/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
	"github.com/jwalitptl/clinic-ledger/pkg/worker"
)

func setupHealthCheck(port int, ready func(context.Context) error, logger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err, "Health check server failed")
		}
	}()
	return srv
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := app.NewLogger(cfg.Logging)
	if cfg.Database.Driver != "postgres" {
		log.Fatal(fmt.Errorf("driver %q", cfg.Database.Driver), "The worker needs the postgres driver to share the outbox with the API")
	}

	store, err := app.OpenStore(cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to open storage")
	}
	defer store.Close()

	m := metrics.NewMetrics(cfg.Server.MetricsNamespace, prometheus.DefaultRegisterer)

	zl := log.Zerolog()
	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &zl, m)
	if err != nil {
		log.Fatal(err, "Failed to create Redis broker")
	}
	publisher := messaging.NewChannelPublisher(broker, cfg.Redis.Channel)
	defer publisher.Close()

	processor, err := worker.NewOutboxProcessor(
		store.Outbox,
		publisher,
		cfg.Outbox.ToWorkerConfig(),
		log.WithFields(map[string]interface{}{"component": "outbox_processor"}),
		m,
	)
	if err != nil {
		log.Fatal(err, "Invalid outbox configuration")
	}
	cleanup := worker.NewOutboxCleanupWorker(
		store.Outbox,
		cfg.Outbox.Retention,
		time.Hour,
		log.WithFields(map[string]interface{}{"component": "outbox_cleanup"}),
	)

	health := setupHealthCheck(cfg.Outbox.HealthPort, func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return err
		}
		return broker.Ping(ctx)
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := health.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Health check server shutdown failed")
	}
}
