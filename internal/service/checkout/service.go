package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vegshop/internal/domain"
	"vegshop/internal/service/inventory"
	"vegshop/internal/service/receipt"
)

// State is where a checkout attempt ended up.
type State string

const (
	StateOpen       State = "open"
	StateValidating State = "validating"
	StateCommitted  State = "committed"
	StateRejected   State = "rejected"
)

// Cart is the session being checked out.
type Cart interface {
	BeginCheckout() ([]domain.CartLine, error)
	FinishCheckout(committed bool)
}

// Inventory runs a staged ledger mutation and swaps it in once persisted.
type Inventory interface {
	Mutate(ctx context.Context, fn func(staged *inventory.Ledger) error, persist inventory.PersistFunc) error
}

// Committer durably commits the debited inventory together with the order.
type Committer interface {
	CommitCheckout(ctx context.Context, items []domain.InventoryItem, order domain.Order) error
}

type Recorder interface {
	Append(order domain.Order)
}

type Renderer interface {
	Render(order domain.Order) (receipt.Document, error)
}

// Result describes a finished attempt. Receipt is nil when rendering failed
// after a successful commit.
type Result struct {
	State   State             `json:"state"`
	Order   domain.Order      `json:"order"`
	Receipt *receipt.Document `json:"-"`
}

type Service struct {
	cart      Cart
	inventory Inventory
	store     Committer
	history   Recorder
	renderer  Renderer
	outbox    func(order domain.Order, doc receipt.Document) int
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source used for order timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs overrides order id generation.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// WithDelivery queues each committed receipt with enqueue, which returns the
// number of jobs created.
func WithDelivery(enqueue func(order domain.Order, doc receipt.Document) int) Option {
	return func(s *Service) { s.outbox = enqueue }
}

func New(cart Cart, inv Inventory, store Committer, history Recorder, renderer Renderer, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cart:      cart,
		inventory: inv,
		store:     store,
		history:   history,
		renderer:  renderer,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout validates the whole cart, then debits stock and records the order
// in one persisted step. A rejected attempt leaves inventory, history and cart
// untouched. Receipt rendering and delivery happen after the commit and never
// change its outcome.
func (s *Service) Checkout(ctx context.Context, phone string) (Result, error) {
	lines, err := s.cart.BeginCheckout()
	if err != nil {
		return Result{State: StateOpen}, err
	}
	committed := false
	defer func() { s.cart.FinishCheckout(committed) }()

	order, err := s.commit(ctx, phone, lines)
	if err != nil {
		s.logger.Info("checkout: rejected", zap.Int("lines", len(lines)), zap.Error(err))
		return Result{State: StateRejected}, err
	}
	committed = true
	s.logger.Info("checkout: committed",
		zap.String("order_id", order.ID),
		zap.Int("lines", len(order.Lines)),
		zap.String("total", domain.FormatMoney(order.GrandTotal)))

	result := Result{State: StateCommitted, Order: order}
	if s.renderer == nil {
		return result, nil
	}
	doc, err := s.renderer.Render(order)
	if err != nil {
		s.logger.Warn("checkout: receipt render failed", zap.String("order_id", order.ID), zap.Error(err))
		return result, nil
	}
	result.Receipt = &doc
	if s.outbox != nil {
		queued := s.outbox(order, doc)
		s.logger.Debug("checkout: deliveries queued", zap.String("order_id", order.ID), zap.Int("jobs", queued))
	}
	return result, nil
}

func (s *Service) commit(ctx context.Context, phone string, lines []domain.CartLine) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	phone, err := domain.NormalizePhone(phone)
	if err != nil {
		return domain.Order{}, err
	}
	requests, err := Aggregate(lines)
	if err != nil {
		return domain.Order{}, err
	}
	total, err := domain.GrandTotal(lines)
	if err != nil {
		return domain.Order{}, err
	}
	if s.store == nil {
		return domain.Order{}, domain.PersistenceError("commit checkout", errors.New("store not configured"))
	}

	order := domain.Order{
		ID:         s.newID(),
		PlacedAt:   s.now().UTC(),
		Phone:      phone,
		Lines:      append([]domain.CartLine(nil), lines...),
		GrandTotal: total,
	}

	err = s.inventory.Mutate(ctx, func(staged *inventory.Ledger) error {
		for _, req := range requests {
			if err := staged.CheckAvailability(req.ItemName, req.Quantity); err != nil {
				return err
			}
		}
		for _, req := range requests {
			if _, err := staged.Decrement(req.ItemName, req.Quantity); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, items []domain.InventoryItem) error {
		if err := s.store.CommitCheckout(ctx, items, order); err != nil {
			return err
		}
		if s.history != nil {
			s.history.Append(order)
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// Request is the total quantity of one item across every cart line.
type Request struct {
	ItemName string
	Quantity domain.Quantity
}

// Aggregate sums lines per item, keeping first-seen order.
func Aggregate(lines []domain.CartLine) ([]Request, error) {
	var out []Request
	index := map[string]int{}
	for _, line := range lines {
		i, ok := index[line.ItemName]
		if !ok {
			index[line.ItemName] = len(out)
			out = append(out, Request{ItemName: line.ItemName, Quantity: domain.ToBase(line.Quantity)})
			continue
		}
		sum, err := domain.Add(out[i].Quantity, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", line.ItemName, err)
		}
		out[i].Quantity = sum
	}
	return out, nil
}
