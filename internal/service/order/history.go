package order

import (
	"fmt"
	"sync"

	"vegshop/internal/domain"
)

// History is the append-only record of committed orders.
type History struct {
	mu     sync.RWMutex
	orders []domain.Order
	byID   map[string]int
}

// NewHistory seeds the history with previously persisted orders.
func NewHistory(orders []domain.Order) *History {
	h := &History{byID: make(map[string]int, len(orders))}
	for _, o := range orders {
		h.append(o)
	}
	return h
}

// Append records a committed order. Orders are never edited afterwards.
func (h *History) Append(o domain.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.append(o)
}

func (h *History) append(o domain.Order) {
	o.Lines = append([]domain.CartLine(nil), o.Lines...)
	if o.ID != "" {
		h.byID[o.ID] = len(h.orders)
	}
	h.orders = append(h.orders, o)
}

// List returns all orders oldest first.
func (h *History) List() []domain.Order {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.Order(nil), h.orders...)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orders)
}

func (h *History) Get(id string) (domain.Order, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	idx, ok := h.byID[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return h.orders[idx], nil
}
