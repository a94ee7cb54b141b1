package inventory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vegshop/internal/domain"
)

// Store persists the full inventory after an owner mutation.
type Store interface {
	SaveInventory(ctx context.Context, items []domain.InventoryItem) error
}

// PersistFunc writes a staged ledger. The staged state only becomes live when it returns nil.
type PersistFunc func(ctx context.Context, items []domain.InventoryItem) error

// Service owns the authoritative ledger. Every mutation runs against a staged
// clone under one lock and is swapped in only after it has been persisted.
type Service struct {
	mu     sync.Mutex
	ledger *Ledger
	store  Store
	logger *zap.Logger
}

// New wraps an already loaded ledger.
func New(ledger *Ledger, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ledger == nil {
		ledger = &Ledger{items: map[string]domain.InventoryItem{}}
	}
	return &Service{ledger: ledger, store: store, logger: logger}
}

// List returns every record in insertion order.
func (s *Service) List() []domain.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Items()
}

func (s *Service) Get(name string) (domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(name)
}

// CheckAvailability validates against current stock without mutating anything.
func (s *Service) CheckAvailability(name string, requested domain.Quantity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.CheckAvailability(name, requested)
}

// Mutate stages fn against a clone, persists the result, then swaps it in.
// If fn or persist fails the live ledger is untouched.
func (s *Service) Mutate(ctx context.Context, fn func(staged *Ledger) error, persist PersistFunc) error {
	if persist == nil {
		return errors.New("inventory: persist func is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.ledger.Clone()
	if err := fn(staged); err != nil {
		return err
	}
	if err := persist(ctx, staged.Items()); err != nil {
		s.logger.Error("inventory: persist staged ledger failed", zap.Error(err))
		return err
	}
	s.ledger = staged
	return nil
}

func (s *Service) save(ctx context.Context, items []domain.InventoryItem) error {
	if s.store == nil {
		return domain.PersistenceError("save inventory", errors.New("store not configured"))
	}
	return s.store.SaveInventory(ctx, items)
}

// AddStock restocks an item, creating it when absent.
func (s *Service) AddStock(ctx context.Context, name string, quantity domain.Quantity, price, cost decimal.Decimal) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := s.Mutate(ctx, func(staged *Ledger) error {
		item, err := staged.AddStock(name, quantity, price, cost)
		out = item
		return err
	}, s.save)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.logger.Info("inventory: stock added",
		zap.String("item", out.Name),
		zap.String("added", domain.FormatQuantity(quantity)),
		zap.String("stock", domain.FormatQuantity(out.Stock)))
	return out, nil
}

// CreateItem inserts a new record; an existing name fails with ErrDuplicateItem.
func (s *Service) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	err := s.Mutate(ctx, func(staged *Ledger) error {
		return staged.Create(item)
	}, s.save)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return s.Get(item.Name)
}

// UpdateItem applies an owner edit to one record.
func (s *Service) UpdateItem(ctx context.Context, name string, patch Patch) (domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := s.Mutate(ctx, func(staged *Ledger) error {
		item, err := staged.Update(name, patch)
		out = item
		return err
	}, s.save)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	s.logger.Info("inventory: item updated", zap.String("item", name))
	return out, nil
}

// RemoveItem deletes a record. Later references to it fail with ErrUnknownItem.
func (s *Service) RemoveItem(ctx context.Context, name string) error {
	err := s.Mutate(ctx, func(staged *Ledger) error {
		return staged.Remove(name)
	}, s.save)
	if err != nil {
		return err
	}
	s.logger.Info("inventory: item removed", zap.String("item", name))
	return nil
}
