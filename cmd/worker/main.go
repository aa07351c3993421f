package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/pilger-eventos/rsvp-api/internal/config"
	"github.com/pilger-eventos/rsvp-api/internal/repository/postgres"
	"github.com/pilger-eventos/rsvp-api/internal/service/appconfig"
	"github.com/pilger-eventos/rsvp-api/internal/service/dispatch"
	"github.com/pilger-eventos/rsvp-api/internal/whatsapp"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
	"github.com/pilger-eventos/rsvp-api/pkg/messaging"
	redisBroker "github.com/pilger-eventos/rsvp-api/pkg/messaging/redis"
	"github.com/pilger-eventos/rsvp-api/pkg/metrics"
)

// setupHealthCheck serves liveness probes and metrics on a side port.
func setupHealthCheck(appLogger *logger.Logger, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.New(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
	})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis broker for dispatch nudges
	var broker messaging.Broker
	broker, err = redisBroker.NewBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.ZL())
	if err != nil {
		appLogger.Error(err, "redis unavailable, running on periodic ticks only")
		broker = nil
	} else {
		defer broker.Close()
	}

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	queueRepo := postgres.NewQueueRepository(base)
	configRepo := postgres.NewAppConfigRepository(db)

	registry := prometheus.NewRegistry()
	m := metrics.New("rsvp_worker")
	if err := m.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	configSvc := appconfig.NewService(configRepo)
	sender := whatsapp.NewClient(cfg.Dispatch.HTTPTimeout)
	dispatcher := dispatch.New(queueRepo, guestRepo, configSvc, sender, broker, dispatch.Config{
		BatchSize:    cfg.Dispatch.BatchSize,
		MessageDelay: cfg.Dispatch.MessageDelay,
	}, appLogger, m)

	setupHealthCheck(appLogger, registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down...")
		cancel()
	}()

	runner := dispatch.NewRunner(dispatcher, broker, cfg.Dispatch.PollInterval)
	if err := runner.Start(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("dispatch runner failed")
	}
}
