package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"hookd/internal/api"
	"hookd/internal/api/handlers"
	"hookd/internal/api/middleware"
	"hookd/internal/engine/dispatch"
	"hookd/internal/platform/auth"
	"hookd/internal/platform/config"
	"hookd/internal/platform/database"
	"hookd/internal/platform/metrics"
	"hookd/internal/platform/repositories"
	"hookd/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	// Repositories
	subRepo := repositories.NewSubscriptionRepository(db)
	logRepo := repositories.NewDeliveryLogRepository(db)
	keyRepo := repositories.NewAPIKeyRepository(db)

	// Dispatch engine
	m := metrics.New(prometheus.DefaultRegisterer)
	resolver := dispatch.NewResolver(subRepo)
	dispatcher := dispatch.NewDispatcher(nil, cfg.Dispatch, m)
	recorder := dispatch.NewLogRecorder(logRepo)
	dispatchSvc := dispatch.NewService(resolver, dispatcher, recorder, m)

	// Auth
	tokenSvc := auth.NewTokenService(cfg.Auth)

	// HTTP surface
	deps := &api.Dependencies{
		DispatchHandler:     handlers.NewDispatchHandler(dispatchSvc),
		SubscriptionHandler: handlers.NewSubscriptionHandler(subRepo),
		DeliveryLogHandler:  handlers.NewDeliveryLogHandler(logRepo, subRepo),
		APIKeyHandler:       handlers.NewAPIKeyHandler(keyRepo),
		HealthHandler:       handlers.NewHealthHandler(db),
		APIKeyMiddleware:    middleware.NewAPIKeyMiddleware(keyRepo),
		ServiceAuth:         middleware.NewServiceAuthMiddleware(tokenSvc),
		MetricsHandler:      api.NewMetricsHandler(),
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("forced server shutdown")
		}
	}()

	log.Info().Str("addr", addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
