package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
)

type stubStore struct {
	saved [][]domain.InventoryItem
	err   error
}

func (s *stubStore) SaveInventory(_ context.Context, items []domain.InventoryItem) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, items)
	return nil
}

func TestServiceAddStockPersists(t *testing.T) {
	store := &stubStore{}
	svc := New(testLedger(t), store, nil)

	got, err := svc.AddStock(context.Background(), "Onion", domain.MustParse("5 kg"), decimal.NewFromInt(30), decimal.NewFromInt(18))
	if err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if got.Stock.String() != "15.00 kg" {
		t.Fatalf("unexpected stock %s", got.Stock)
	}
	if len(store.saved) != 1 || len(store.saved[0]) != 3 {
		t.Fatalf("expected one full inventory save, got %+v", store.saved)
	}
}

func TestServiceMutationRollsBackOnPersistFailure(t *testing.T) {
	store := &stubStore{err: domain.PersistenceError("save inventory", errors.New("disk full"))}
	svc := New(testLedger(t), store, nil)

	_, err := svc.AddStock(context.Background(), "Onion", domain.MustParse("5 kg"), decimal.NewFromInt(30), decimal.NewFromInt(18))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	onion, _ := svc.Get("Onion")
	if onion.Stock.String() != "10.00 kg" || !onion.SellPrice.Equal(decimal.NewFromInt(28)) {
		t.Fatalf("live ledger must be unchanged, got %+v", onion)
	}

	if err := svc.RemoveItem(context.Background(), "Onion"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
	if _, err := svc.Get("Onion"); err != nil {
		t.Fatalf("item must survive failed remove, got %v", err)
	}
}

func TestServiceMutateStagingFailureLeavesLedger(t *testing.T) {
	svc := New(testLedger(t), &stubStore{}, nil)
	persisted := false
	err := svc.Mutate(context.Background(), func(staged *Ledger) error {
		if _, err := staged.Decrement("Tomato", domain.MustParse("5 kg")); err != nil {
			return err
		}
		_, err := staged.Decrement("Garlic", domain.MustParse("1 kg"))
		return err
	}, func(context.Context, []domain.InventoryItem) error {
		persisted = true
		return nil
	})
	if !errors.Is(err, domain.ErrUnknownItem) {
		t.Fatalf("expected unknown item, got %v", err)
	}
	if persisted {
		t.Fatalf("persist must not run when staging fails")
	}
	tomato, _ := svc.Get("Tomato")
	if tomato.Stock.String() != "15.00 kg" {
		t.Fatalf("expected untouched stock, got %s", tomato.Stock)
	}
}

func TestServiceCreateUpdateRemove(t *testing.T) {
	store := &stubStore{}
	svc := New(testLedger(t), store, nil)
	ctx := context.Background()

	if _, err := svc.CreateItem(ctx, item("Tomato", "1 kg", 1, 1)); !errors.Is(err, domain.ErrDuplicateItem) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	created, err := svc.CreateItem(ctx, item(" Carrot ", "6 kg", 40, 25))
	if err != nil || created.Name != "Carrot" {
		t.Fatalf("CreateItem: %+v err=%v", created, err)
	}

	cost := decimal.NewFromInt(22)
	updated, err := svc.UpdateItem(ctx, "Carrot", Patch{CostPrice: &cost})
	if err != nil || !updated.CostPrice.Equal(cost) {
		t.Fatalf("UpdateItem: %+v err=%v", updated, err)
	}

	if err := svc.RemoveItem(ctx, "Carrot"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(svc.List()) != 3 {
		t.Fatalf("expected 3 items after remove, got %d", len(svc.List()))
	}
	if len(store.saved) != 3 {
		t.Fatalf("expected a save per successful mutation, got %d", len(store.saved))
	}
}
