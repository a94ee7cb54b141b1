package store

import (
	"context"

	"vegshop/internal/domain"
)

// State is everything a process needs at startup.
type State struct {
	Items  []domain.InventoryItem
	Orders []domain.Order
	// Defaulted is set when Items came from the default catalog rather than the store.
	Defaulted bool
}

// Repository persists the inventory and the order history.
// CommitCheckout writes both as one unit: either both are durable or neither is.
type Repository interface {
	Load(ctx context.Context) (State, error)
	SaveInventory(ctx context.Context, items []domain.InventoryItem) error
	CommitCheckout(ctx context.Context, items []domain.InventoryItem, order domain.Order) error
	Ping(ctx context.Context) error
}
