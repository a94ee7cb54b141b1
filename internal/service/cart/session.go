package cart

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
)

// ErrCheckoutInProgress is returned for edits made while a checkout is validating.
var ErrCheckoutInProgress = errors.New("cart: checkout in progress")

// State is the session's position in the checkout flow.
type State string

const (
	StateOpen       State = "open"
	StateValidating State = "validating"
)

// Catalog is the read side of the inventory the cart validates against.
type Catalog interface {
	Get(name string) (domain.InventoryItem, error)
	CheckAvailability(name string, requested domain.Quantity) error
}

// Session is the single active cart. Lines hold price snapshots, so later
// catalog edits never change a line already in the cart.
type Session struct {
	mu      sync.Mutex
	catalog Catalog
	lines   []domain.CartLine
	state   State
	newID   func() string
}

// NewSession creates an empty, open cart.
func NewSession(catalog Catalog) *Session {
	return &Session{
		catalog: catalog,
		state:   StateOpen,
		newID:   func() string { return uuid.NewString() },
	}
}

// QuantityInput accepts either quantity text ("2 kg") or a bare amount with
// an explicit unit token. An amount without a unit stays unspecified and is
// rejected when compared against stock.
type QuantityInput struct {
	Text   string           `json:"quantity,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Unit   string           `json:"unit,omitempty"`
}

// Parse turns the input into a Quantity.
func (in QuantityInput) Parse() (domain.Quantity, error) {
	if strings.TrimSpace(in.Text) != "" {
		return domain.ParseText(in.Text)
	}
	if in.Amount == nil {
		return domain.Quantity{}, fmt.Errorf("%w: quantity required", domain.ErrMalformedQuantity)
	}
	q, err := domain.ParseNumeric(*in.Amount)
	if err != nil {
		return domain.Quantity{}, err
	}
	if strings.TrimSpace(in.Unit) == "" {
		return q, nil
	}
	return q.Resolve(in.Unit)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Session) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.lines...)
}

// Total is the unrounded grand total at snapshot prices.
func (s *Session) Total() (decimal.Decimal, error) {
	return domain.GrandTotal(s.Lines())
}

// AddLine validates the request against current stock and snapshots the sell price.
func (s *Session) AddLine(itemName string, quantity domain.Quantity) (domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return domain.CartLine{}, ErrCheckoutInProgress
	}

	item, err := s.validate(itemName, quantity, "")
	if err != nil {
		return domain.CartLine{}, err
	}
	line := domain.CartLine{
		ID:        s.newID(),
		ItemName:  item.Name,
		Quantity:  domain.ToBase(quantity),
		UnitPrice: item.SellPrice,
	}
	s.lines = append(s.lines, line)
	return line, nil
}

// UpdateLine changes a line's quantity and keeps its original price snapshot.
func (s *Session) UpdateLine(lineID string, quantity domain.Quantity) (domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return domain.CartLine{}, ErrCheckoutInProgress
	}

	idx := s.indexOf(lineID)
	if idx < 0 {
		return domain.CartLine{}, fmt.Errorf("%w: %s", domain.ErrUnknownLine, lineID)
	}
	if _, err := s.validate(s.lines[idx].ItemName, quantity, lineID); err != nil {
		return domain.CartLine{}, err
	}
	s.lines[idx].Quantity = domain.ToBase(quantity)
	return s.lines[idx], nil
}

func (s *Session) RemoveLine(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return ErrCheckoutInProgress
	}
	idx := s.indexOf(lineID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrUnknownLine, lineID)
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	return nil
}

// Clear cancels the cart.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return ErrCheckoutInProgress
	}
	s.lines = nil
	return nil
}

// BeginCheckout freezes the cart and returns the lines to validate.
func (s *Session) BeginCheckout() ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateOpen {
		return nil, ErrCheckoutInProgress
	}
	s.state = StateValidating
	return append([]domain.CartLine(nil), s.lines...), nil
}

// FinishCheckout reopens the cart, clearing it only when the attempt committed.
func (s *Session) FinishCheckout(committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if committed {
		s.lines = nil
	}
	s.state = StateOpen
}

// validate checks the item, the unit family and the item's total in the cart
// including quantity. skipLine excludes the line being edited.
func (s *Session) validate(itemName string, quantity domain.Quantity, skipLine string) (domain.InventoryItem, error) {
	if s.catalog == nil {
		return domain.InventoryItem{}, errors.New("cart: catalog unavailable")
	}
	item, err := s.catalog.Get(itemName)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if err := domain.RequireSameFamily(item.Name, item.Stock, quantity); err != nil {
		return domain.InventoryItem{}, err
	}
	if quantity.IsZero() {
		return domain.InventoryItem{}, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	total := quantity
	for _, line := range s.lines {
		if line.ItemName != item.Name || line.ID == skipLine {
			continue
		}
		if total, err = domain.Add(total, line.Quantity); err != nil {
			return domain.InventoryItem{}, err
		}
	}
	if err := s.catalog.CheckAvailability(item.Name, total); err != nil {
		return domain.InventoryItem{}, err
	}
	return item, nil
}

func (s *Session) indexOf(lineID string) int {
	for i, line := range s.lines {
		if line.ID == lineID {
			return i
		}
	}
	return -1
}
