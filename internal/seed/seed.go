package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
	"vegshop/internal/repository/store"
)

type itemSeed struct {
	Name     string
	Quantity string
	Price    int64
	Cost     int64
}

var catalog = []itemSeed{
	{Name: "Tomato", Quantity: "20 kg", Price: 25, Cost: 15},
	{Name: "Onion", Quantity: "10 kg", Price: 30, Cost: 18},
	{Name: "Potato", Quantity: "25 kg", Price: 20, Cost: 12},
	{Name: "Cauliflower", Quantity: "15 pcs", Price: 35, Cost: 22},
	{Name: "Cabbage", Quantity: "12 pcs", Price: 28, Cost: 16},
	{Name: "Milk", Quantity: "20 l", Price: 56, Cost: 48},
}

// Catalog returns the default six-item inventory used when no store exists yet.
func Catalog() []domain.InventoryItem {
	items := make([]domain.InventoryItem, 0, len(catalog))
	for _, s := range catalog {
		items = append(items, domain.InventoryItem{
			Name:      s.Name,
			Stock:     domain.MustParse(s.Quantity),
			SellPrice: decimal.NewFromInt(s.Price),
			CostPrice: decimal.NewFromInt(s.Cost),
		})
	}
	return items
}

// Apply writes the default catalog when the store holds no items of its own.
// It is idempotent: a populated store is left alone and false is returned.
func Apply(ctx context.Context, repo store.Repository) (bool, error) {
	st, err := repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load store: %w", err)
	}
	if len(st.Items) > 0 && !st.Defaulted {
		return false, nil
	}
	if err := repo.SaveInventory(ctx, Catalog()); err != nil {
		return false, fmt.Errorf("save catalog: %w", err)
	}
	return true, nil
}
