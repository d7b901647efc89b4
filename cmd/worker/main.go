package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"hookd/internal/platform/config"
	"hookd/internal/platform/database"
	"hookd/internal/platform/repositories"
	"hookd/internal/pkg/logger"
	"hookd/internal/workers"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
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

	logRepo := repositories.NewDeliveryLogRepository(db)
	retention := workers.NewRetentionWorker(logRepo, cfg.Retention)
	retention.Run(ctx)
}
