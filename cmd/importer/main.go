package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"vegshop/internal/config"
	"vegshop/internal/importer"
	"vegshop/internal/observability"
	"vegshop/internal/repository/store"
	"vegshop/internal/seed"
	"vegshop/internal/service/inventory"
)

func main() {
	var (
		csvPath      string
		legacyItems  string
		legacyOrders string
	)
	flag.StringVar(&csvPath, "file", "", "Path to a name,quantity,price,cost CSV price list")
	flag.StringVar(&legacyItems, "legacy-inventory", "", "Path to a legacy inventory.json")
	flag.StringVar(&legacyOrders, "legacy-orders", "", "Path to a legacy customers.json")
	flag.Parse()

	if csvPath == "" && legacyItems == "" && legacyOrders == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	state, err := repo.Load(ctx)
	if err != nil {
		logger.Fatal("load store", zap.Error(err))
	}
	items := state.Items
	if state.Defaulted && (legacyItems != "" || csvPath != "") {
		// An imported catalog replaces the built-in defaults instead of adding to them.
		items = nil
	}
	ledger, err := inventory.NewLedger(items)
	if err != nil {
		logger.Fatal("build inventory ledger", zap.Error(err))
	}
	inv := inventory.New(ledger, repo, logger)

	start := time.Now()
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			logger.Fatal("open file", zap.Error(err))
		}
		count, err := importer.NewCSVImporter(f, inv, logger).Run(ctx)
		f.Close()
		if err != nil {
			logger.Fatal("import failed", zap.Int("applied", count), zap.Error(err))
		}
		fmt.Printf("Restocked %d rows from %s\n", count, csvPath)
	}

	var report importer.Report
	legacy := importer.NewLegacyImporter(inv, repo, inv.List, logger)
	if legacyItems != "" {
		f, err := os.Open(legacyItems)
		if err != nil {
			logger.Fatal("open legacy inventory", zap.Error(err))
		}
		err = legacy.ImportInventory(ctx, f, &report)
		f.Close()
		if err != nil {
			logger.Fatal("legacy inventory import failed", zap.Error(err))
		}
	}
	if legacyOrders != "" {
		f, err := os.Open(legacyOrders)
		if err != nil {
			logger.Fatal("open legacy orders", zap.Error(err))
		}
		err = legacy.ImportOrders(ctx, f, &report)
		f.Close()
		if err != nil {
			logger.Fatal("legacy order import failed", zap.Error(err))
		}
	}
	if legacyItems != "" || legacyOrders != "" {
		fmt.Printf("Imported %d items (%d merged), %d orders, skipped %d\n", report.Items, report.Merged, report.Orders, report.Skipped)
	}
	fmt.Printf("Done in %s\n", time.Since(start).Truncate(time.Millisecond))
}
