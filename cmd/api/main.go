package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-ledger/internal/app"
	"github.com/jwalitptl/clinic-ledger/internal/config"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	app.NewLogger(cfg.Logging)
	gin.SetMode(gin.ReleaseMode)

	// Initialize storage
	store, err := app.OpenStore(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open storage")
	}
	defer store.Close()

	m := metrics.NewMetrics(cfg.Server.MetricsNamespace, prometheus.DefaultRegisterer)
	svcs := app.NewServices(cfg, store, m)

	r, err := app.NewRouter(cfg, store, svcs, m, prometheus.DefaultGatherer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
