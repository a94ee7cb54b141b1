package domain

import "github.com/shopspring/decimal"

// InventoryItem is one stock record keyed by its case-sensitive name.
// Prices are per kilogram for weighed items and per unit otherwise.
type InventoryItem struct {
	Name      string          `json:"name"`
	Stock     Quantity        `json:"qty"`
	SellPrice decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost"`
}
