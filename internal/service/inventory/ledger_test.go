package inventory

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
)

func item(name, qty string, price, cost int64) domain.InventoryItem {
	return domain.InventoryItem{
		Name:      name,
		Stock:     domain.MustParse(qty),
		SellPrice: decimal.NewFromInt(price),
		CostPrice: decimal.NewFromInt(cost),
	}
}

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := NewLedger([]domain.InventoryItem{
		item("Tomato", "15 kg", 25, 15),
		item("Onion", "10 kg", 28, 16),
		item("Cauliflower", "8 pcs", 35, 20),
	})
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l
}

func TestNewLedgerRejectsDuplicates(t *testing.T) {
	_, err := NewLedger([]domain.InventoryItem{item("Okra", "1 kg", 40, 30), item("Okra", "2 kg", 45, 30)})
	if !errors.Is(err, domain.ErrDuplicateItem) {
		t.Fatalf("expected duplicate item, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	l := testLedger(t)

	if err := l.CheckAvailability("Tomato", domain.MustParse("15000 g")); err != nil {
		t.Fatalf("expected exact stock to be available, got %v", err)
	}

	var insufficient *domain.InsufficientStockError
	err := l.CheckAvailability("Tomato", domain.MustParse("20 kg"))
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if insufficient.Available.String() != "15.00 kg" || insufficient.Requested.String() != "20.00 kg" {
		t.Fatalf("unexpected detail %v / %v", insufficient.Requested, insufficient.Available)
	}

	if err := l.CheckAvailability("Tomato", domain.MustParse("3 pcs")); !errors.Is(err, domain.ErrUnitMismatch) {
		t.Fatalf("expected unit mismatch, got %v", err)
	}
	if err := l.CheckAvailability("Cauliflower", domain.MustParse("1 kg")); !errors.Is(err, domain.ErrUnitMismatch) {
		t.Fatalf("expected unit mismatch, got %v", err)
	}
	if err := l.CheckAvailability("Garlic", domain.MustParse("1 kg")); !errors.Is(err, domain.ErrUnknownItem) {
		t.Fatalf("expected unknown item, got %v", err)
	}

	got, _ := l.Get("Tomato")
	if !got.Stock.Equal(domain.MustParse("15 kg")) {
		t.Fatalf("check must not mutate stock, got %v", got.Stock)
	}
}

func TestDecrementClampsAtZero(t *testing.T) {
	l := testLedger(t)

	left, err := l.Decrement("Onion", domain.MustParse("2500 g"))
	if err != nil {
		t.Fatalf("Decrement: %v", err)
	}
	if left.String() != "7.50 kg" {
		t.Fatalf("unexpected balance %s", left)
	}

	left, err = l.Decrement("Onion", domain.MustParse("50 kg"))
	if err != nil {
		t.Fatalf("Decrement: %v", err)
	}
	if !left.IsZero() || left.Unit() != domain.UnitGram {
		t.Fatalf("expected zero grams, got %s", left.CanonicalText())
	}

	if _, err := l.Decrement("Onion", domain.MustParse("1 l")); !errors.Is(err, domain.ErrUnitMismatch) {
		t.Fatalf("expected unit mismatch, got %v", err)
	}
}

func TestAddStockMergesExisting(t *testing.T) {
	l := testLedger(t)

	got, err := l.AddStock("Onion", domain.MustParse("5 kg"), decimal.NewFromInt(30), decimal.NewFromInt(18))
	if err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if !got.Stock.Equal(domain.MustParse("15 kg")) {
		t.Fatalf("expected 15 kg, got %s", got.Stock)
	}
	if !got.SellPrice.Equal(decimal.NewFromInt(30)) || !got.CostPrice.Equal(decimal.NewFromInt(18)) {
		t.Fatalf("expected latest prices, got %s / %s", got.SellPrice, got.CostPrice)
	}
	if l.Len() != 3 {
		t.Fatalf("merge must not add a record, got %d", l.Len())
	}

	if _, err := l.AddStock("Onion", domain.MustParse("2 pcs"), decimal.NewFromInt(30), decimal.NewFromInt(18)); !errors.Is(err, domain.ErrUnitMismatch) {
		t.Fatalf("expected unit mismatch on merge, got %v", err)
	}
}

func TestAddStockCreatesMissing(t *testing.T) {
	l := testLedger(t)
	got, err := l.AddStock(" Milk ", domain.MustParse("12 liters"), decimal.NewFromInt(56), decimal.NewFromInt(48))
	if err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if got.Name != "Milk" || got.Stock.String() != "12.00 l" {
		t.Fatalf("unexpected item %+v", got)
	}
	items := l.Items()
	if items[len(items)-1].Name != "Milk" {
		t.Fatalf("new items append in order, got %+v", items)
	}
}

func TestCreateAndUpdateValidation(t *testing.T) {
	l := testLedger(t)

	if err := l.Create(item("Tomato", "1 kg", 1, 1)); !errors.Is(err, domain.ErrDuplicateItem) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if err := l.Create(item("  ", "1 kg", 1, 1)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	negative := decimal.NewFromInt(-1)
	if _, err := l.Update("Tomato", Patch{SellPrice: &negative}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	stock := domain.MustParse("4 kg")
	price := decimal.NewFromInt(27)
	got, err := l.Update("Tomato", Patch{Stock: &stock, SellPrice: &price})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !got.Stock.Equal(stock) || !got.SellPrice.Equal(price) || !got.CostPrice.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected update result %+v", got)
	}
}

func TestRemoveAndClone(t *testing.T) {
	l := testLedger(t)
	clone := l.Clone()

	if err := clone.Remove("Onion"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := clone.Get("Onion"); !errors.Is(err, domain.ErrUnknownItem) {
		t.Fatalf("expected unknown item after remove, got %v", err)
	}
	if _, err := l.Get("Onion"); err != nil {
		t.Fatalf("original ledger must be untouched, got %v", err)
	}
	if err := clone.Remove("Onion"); !errors.Is(err, domain.ErrUnknownItem) {
		t.Fatalf("expected unknown item on second remove, got %v", err)
	}
	if names := clone.Items(); len(names) != 2 || names[0].Name != "Tomato" || names[1].Name != "Cauliflower" {
		t.Fatalf("unexpected order after remove %+v", names)
	}
}
