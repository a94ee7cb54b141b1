package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"vegshop/internal/config"
	"vegshop/internal/domain"
	"vegshop/internal/httpserver"
	"vegshop/internal/observability"
	"vegshop/internal/repository/store"
	"vegshop/internal/seed"
	"vegshop/internal/service/cart"
	"vegshop/internal/service/checkout"
	"vegshop/internal/service/delivery"
	"vegshop/internal/service/inventory"
	"vegshop/internal/service/order"
	"vegshop/internal/service/owner"
	"vegshop/internal/service/receipt"
)

func main() {
	cfg := config.Load()
	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := store.Open(ctx, cfg, seed.Catalog(), logger)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	state, err := repo.Load(ctx)
	if err != nil {
		logger.Fatal("load store", zap.Error(err))
	}
	ledger, err := inventory.NewLedger(state.Items)
	if err != nil {
		logger.Fatal("build inventory ledger", zap.Error(err))
	}

	inventoryService := inventory.New(ledger, repo, logger)
	history := order.NewHistory(state.Orders)
	session := cart.NewSession(inventoryService)
	renderer := receipt.NewRenderer()

	deliverers, closeDeliverers := buildDeliverers(ctx, cfg, logger)
	defer closeDeliverers()
	outbox := delivery.NewOutbox(deliverers, cfg.DeliveryTimeout, logger)

	checkoutService := checkout.New(session, inventoryService, repo, history, renderer, logger,
		checkout.WithDelivery(func(o domain.Order, doc receipt.Document) int {
			return len(outbox.Enqueue(o, doc))
		}),
	)

	ownerAuth := owner.New(cfg.OwnerUsername, cfg.OwnerPasswordHash)
	if !ownerAuth.Enabled() {
		logger.Warn("owner credentials not configured; owner routes are disabled")
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Store:      repo,
		Inventory:  inventoryService,
		Cart:       session,
		Checkout:   checkoutService,
		Orders:     history,
		Receipts:   renderer,
		Deliveries: outbox,
		Owner:      ownerAuth,
	}, httpserver.Options{CORSOrigins: cfg.CORSOrigins})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	if len(outbox.Channels()) > 0 {
		go outbox.Run(ctx, cfg.DeliveryInterval)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("store", cfg.StoreDriver),
			zap.Int("items", ledger.Len()),
			zap.Int("orders", history.Len()),
			zap.Strings("delivery_channels", outbox.Channels()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received signal, shutting down")
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}

	if pending := outbox.Pending(); pending > 0 {
		report := outbox.Drain(shutdownCtx)
		logger.Info("final delivery drain",
			zap.Int("pending", pending),
			zap.Int("delivered", report.Delivered),
			zap.Int("failed", report.Failed))
	}
}

// buildDeliverers enables each channel that has configuration.
func buildDeliverers(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]delivery.Deliverer, func()) {
	var (
		deliverers []delivery.Deliverer
		closers    []func()
	)

	if cfg.ReceiptBucket != "" {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Warn("storage delivery disabled: client init failed", zap.Error(err))
		} else {
			closers = append(closers, func() {
				if err := storageClient.Close(); err != nil {
					logger.Warn("storage close error", zap.Error(err))
				}
			})
			uploader, err := delivery.NewBucketUploader(storageClient, cfg.ReceiptBucket)
			if err != nil {
				logger.Warn("storage delivery disabled", zap.Error(err))
			} else {
				deliverers = append(deliverers, uploader)
			}
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		messenger := delivery.NewKafkaMessenger(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		deliverers = append(deliverers, messenger)
		closers = append(closers, func() {
			if err := messenger.Close(); err != nil {
				logger.Warn("kafka close error", zap.Error(err))
			}
		})
	}

	return deliverers, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

