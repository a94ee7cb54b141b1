package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"vegshop/internal/config"
	"vegshop/internal/observability"
	"vegshop/internal/repository/store"
	"vegshop/internal/seed"
)

func main() {
	cfg := config.Load()
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	repo, closeStore, err := store.Open(ctx, cfg, seed.Catalog(), logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	wrote, err := seed.Apply(ctx, repo)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
	if !wrote {
		logger.Info("store already has inventory; seed skipped")
		return
	}
	logger.Info("seed applied", zap.Int("items", len(seed.Catalog())))
}
