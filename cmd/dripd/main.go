package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dripcalc/internal/config"
	"dripcalc/internal/logger"
	"dripcalc/internal/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("DRIP_CONFIG"), "path to YAML config file (optional)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Init("info", false)
		logger.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	log := logger.WithComponent("main")

	s, err := server.New(cfg, *configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	if err := s.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	log.Info().Msg("exited")
}
