package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"vegshop/internal/config"
	"vegshop/internal/db"
	"vegshop/internal/domain"
)

// Open builds the repository selected by cfg.StoreDriver. The returned close
// func releases any connection pool and is never nil.
func Open(ctx context.Context, cfg config.Config, defaults []domain.InventoryItem, logger *zap.Logger) (Repository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverFile, "":
		f, err := NewFile(cfg.DataDir, defaults, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return f, func() {}, nil
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect db: %w", err)
		}
		return NewPostgres(pool, logger), pool.Close, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
