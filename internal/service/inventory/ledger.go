package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
)

// Ledger is the in-memory set of stock records. It is not safe for concurrent
// use; Service serializes access and only ever mutates staged clones.
type Ledger struct {
	names []string
	items map[string]domain.InventoryItem
}

// NewLedger builds a ledger from persisted records, rejecting duplicate names.
func NewLedger(items []domain.InventoryItem) (*Ledger, error) {
	l := &Ledger{items: make(map[string]domain.InventoryItem, len(items))}
	for _, item := range items {
		if err := l.Create(item); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Clone returns an independent copy. Quantities and decimals are values, so a
// shallow copy of each record is enough.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{
		names: append([]string(nil), l.names...),
		items: make(map[string]domain.InventoryItem, len(l.items)),
	}
	for k, v := range l.items {
		out.items[k] = v
	}
	return out
}

// Items returns the records in insertion order.
func (l *Ledger) Items() []domain.InventoryItem {
	out := make([]domain.InventoryItem, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, l.items[name])
	}
	return out
}

func (l *Ledger) Len() int { return len(l.names) }

func (l *Ledger) Get(name string) (domain.InventoryItem, error) {
	item, ok := l.items[name]
	if !ok {
		return domain.InventoryItem{}, fmt.Errorf("%w: %q", domain.ErrUnknownItem, name)
	}
	return item, nil
}

// CheckAvailability verifies that requested can be taken from the item's stock.
func (l *Ledger) CheckAvailability(name string, requested domain.Quantity) error {
	item, err := l.Get(name)
	if err != nil {
		return err
	}
	if err := domain.RequireSameFamily(name, item.Stock, requested); err != nil {
		return err
	}
	cmp, err := domain.Compare(requested, item.Stock)
	if err != nil {
		return err
	}
	if cmp > 0 {
		return &domain.InsufficientStockError{Item: name, Requested: domain.ToBase(requested), Available: item.Stock}
	}
	return nil
}

// Decrement removes quantity from the item's stock and returns the new balance.
// The balance is floored at zero rather than failing; CheckAvailability keeps
// customer flows from reaching the floor.
func (l *Ledger) Decrement(name string, quantity domain.Quantity) (domain.Quantity, error) {
	item, err := l.Get(name)
	if err != nil {
		return domain.Quantity{}, err
	}
	if err := domain.RequireSameFamily(name, item.Stock, quantity); err != nil {
		return domain.Quantity{}, err
	}
	left, err := domain.SubtractFloor(item.Stock, quantity)
	if err != nil {
		return domain.Quantity{}, err
	}
	item.Stock = left
	l.items[name] = item
	return left, nil
}

// AddStock creates the item when absent, otherwise sums quantity into the
// existing stock and overwrites both prices with the latest values.
func (l *Ledger) AddStock(name string, quantity domain.Quantity, price, cost decimal.Decimal) (domain.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if err := validateRecord(name, quantity, price, cost); err != nil {
		return domain.InventoryItem{}, err
	}
	existing, ok := l.items[name]
	if !ok {
		item := domain.InventoryItem{Name: name, Stock: domain.ToBase(quantity), SellPrice: price, CostPrice: cost}
		l.names = append(l.names, name)
		l.items[name] = item
		return item, nil
	}
	if err := domain.RequireSameFamily(name, existing.Stock, quantity); err != nil {
		return domain.InventoryItem{}, err
	}
	merged, err := domain.Add(existing.Stock, quantity)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	existing.Stock = merged
	existing.SellPrice = price
	existing.CostPrice = cost
	l.items[name] = existing
	return existing, nil
}

// Create inserts a new record and fails with ErrDuplicateItem if the name is taken.
func (l *Ledger) Create(item domain.InventoryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if err := validateRecord(item.Name, item.Stock, item.SellPrice, item.CostPrice); err != nil {
		return err
	}
	if _, ok := l.items[item.Name]; ok {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateItem, item.Name)
	}
	item.Stock = domain.ToBase(item.Stock)
	l.names = append(l.names, item.Name)
	l.items[item.Name] = item
	return nil
}

// Patch holds the owner-editable fields; nil fields are left unchanged.
type Patch struct {
	Stock     *domain.Quantity
	SellPrice *decimal.Decimal
	CostPrice *decimal.Decimal
}

// Update applies an owner edit. Replacing stock may change the item's unit.
func (l *Ledger) Update(name string, patch Patch) (domain.InventoryItem, error) {
	item, err := l.Get(name)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if patch.Stock != nil {
		item.Stock = domain.ToBase(*patch.Stock)
	}
	if patch.SellPrice != nil {
		item.SellPrice = *patch.SellPrice
	}
	if patch.CostPrice != nil {
		item.CostPrice = *patch.CostPrice
	}
	if err := validateRecord(item.Name, item.Stock, item.SellPrice, item.CostPrice); err != nil {
		return domain.InventoryItem{}, err
	}
	l.items[name] = item
	return item, nil
}

// Remove deletes the record entirely.
func (l *Ledger) Remove(name string) error {
	if _, err := l.Get(name); err != nil {
		return err
	}
	delete(l.items, name)
	for i, n := range l.names {
		if n == name {
			l.names = append(l.names[:i], l.names[i+1:]...)
			break
		}
	}
	return nil
}

func validateRecord(name string, stock domain.Quantity, price, cost decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("%w: item name required", domain.ErrInvalidInput)
	}
	if stock.Unit() == domain.UnitUnspecified {
		return fmt.Errorf("%w: stock for %q needs a unit", domain.ErrMalformedQuantity, name)
	}
	if price.IsNegative() || cost.IsNegative() {
		return fmt.Errorf("%w: prices for %q cannot be negative", domain.ErrInvalidInput, name)
	}
	return nil
}
