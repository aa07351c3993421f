package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/pilger-eventos/rsvp-api/internal/config"
	"github.com/pilger-eventos/rsvp-api/internal/handler"
	"github.com/pilger-eventos/rsvp-api/internal/middleware"
	"github.com/pilger-eventos/rsvp-api/internal/repository/postgres"
	"github.com/pilger-eventos/rsvp-api/internal/router"
	"github.com/pilger-eventos/rsvp-api/internal/service/appconfig"
	authService "github.com/pilger-eventos/rsvp-api/internal/service/auth"
	"github.com/pilger-eventos/rsvp-api/internal/service/automation"
	"github.com/pilger-eventos/rsvp-api/internal/service/dispatch"
	guestService "github.com/pilger-eventos/rsvp-api/internal/service/guest"
	"github.com/pilger-eventos/rsvp-api/internal/whatsapp"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
	"github.com/pilger-eventos/rsvp-api/pkg/messaging"
	redisBroker "github.com/pilger-eventos/rsvp-api/pkg/messaging/redis"
	"github.com/pilger-eventos/rsvp-api/pkg/metrics"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Pretty:     os.Getenv("LOG_PRETTY") == "true",
	})

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	ruleRepo := postgres.NewRuleRepository(db)
	queueRepo := postgres.NewQueueRepository(base)
	configRepo := postgres.NewAppConfigRepository(db)
	adminRepo := postgres.NewAdminRepository(db)

	// Initialize Redis message broker; the API degrades to tick-only
	// dispatch when it is unreachable.
	var broker messaging.Broker
	broker, err = redisBroker.NewBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.ZL())
	if err != nil {
		appLogger.Error(err, "redis unavailable, dispatch nudges disabled")
		broker = nil
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.New("rsvp")
	if err := m.Register(registry); err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}

	// Initialize services
	configSvc := appconfig.NewService(configRepo)
	sender := whatsapp.NewClient(cfg.Dispatch.HTTPTimeout)
	automationSvc := automation.NewService(guestRepo, ruleRepo, queueRepo, broker, appLogger)
	guestSvc := guestService.NewService(guestRepo, queueRepo, configSvc, sender, automationSvc, cfg.Event.Name, appLogger)
	authSvc := authService.NewService(adminRepo, cfg.JWT)
	dispatcher := dispatch.New(queueRepo, guestRepo, configSvc, sender, broker, dispatch.Config{
		BatchSize:    cfg.Dispatch.BatchSize,
		MessageDelay: cfg.Dispatch.MessageDelay,
	}, appLogger, m)

	// Initialize handlers
	h := router.Handlers{
		Guest:    handler.NewGuestHandler(guestSvc, appLogger),
		Rule:     handler.NewRuleHandler(ruleRepo, appLogger),
		Settings: handler.NewSettingsHandler(configSvc, appLogger),
		Trigger:  handler.NewTriggerHandler(automationSvc, dispatcher, appLogger),
		Auth:     handler.NewAuthHandler(authSvc, appLogger),
		Health:   handler.NewHealthHandler(db),
	}

	r := router.Setup(h, router.Options{
		AuthMiddleware: middleware.NewAuthMiddleware(authSvc),
		RateLimit:      middleware.RateLimiterConfig{RPS: 10, Burst: 20},
		Registry:       registry,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if broker != nil {
		_ = broker.Close()
	}
	appLogger.Info("server exited properly")
}
