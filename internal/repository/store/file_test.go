package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
)

func defaults() []domain.InventoryItem {
	return []domain.InventoryItem{
		{Name: "Tomato", Stock: domain.MustParse("20 kg"), SellPrice: decimal.NewFromInt(25), CostPrice: decimal.NewFromInt(15)},
		{Name: "Milk", Stock: domain.MustParse("20 l"), SellPrice: decimal.NewFromInt(56), CostPrice: decimal.NewFromInt(48)},
	}
}

func newTestFile(t *testing.T) (*File, string) {
	t.Helper()
	dir := t.TempDir()
	f, err := NewFile(dir, defaults(), nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f, dir
}

func testOrder(id string) domain.Order {
	return domain.Order{
		ID:       id,
		PlacedAt: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Phone:    "9876543210",
		Lines: []domain.CartLine{
			{ID: "l1", ItemName: "Tomato", Quantity: domain.MustParse("1234.5 g"), UnitPrice: decimal.NewFromInt(25)},
		},
		GrandTotal: decimal.RequireFromString("30.8625"),
	}
}

func TestFileLoadMissingUsesDefaults(t *testing.T) {
	f, _ := newTestFile(t)
	st, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Items) != 2 || st.Items[0].Name != "Tomato" {
		t.Fatalf("expected default catalog, got %+v", st.Items)
	}
	if len(st.Orders) != 0 {
		t.Fatalf("expected no orders, got %d", len(st.Orders))
	}
	if !st.Defaulted {
		t.Fatalf("expected Defaulted to be set")
	}
}

func TestFileLoadMalformedInventoryUsesDefaults(t *testing.T) {
	f, dir := newTestFile(t)
	if err := os.WriteFile(filepath.Join(dir, inventoryFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Items) != 2 {
		t.Fatalf("expected default catalog, got %d items", len(st.Items))
	}
}

func TestFileLoadMalformedOrdersFails(t *testing.T) {
	f, dir := newTestFile(t)
	if err := os.WriteFile(filepath.Join(dir, ordersFile), []byte("[{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := f.Load(context.Background()); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence failure, got %v", err)
	}
}

func TestFileLoadsLegacyInventory(t *testing.T) {
	f, dir := newTestFile(t)
	legacy := `[{"name": "Onion", "qty": "10.00 kg", "price": 30.0}]`
	if err := os.WriteFile(filepath.Join(dir, inventoryFile), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Items) != 1 || st.Items[0].Stock.CanonicalText() != "10000 g" {
		t.Fatalf("unexpected items %+v", st.Items)
	}
	if !st.Items[0].CostPrice.IsZero() {
		t.Fatalf("missing cost should read as zero, got %s", st.Items[0].CostPrice)
	}
}

func TestFileCommitCheckoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	f, dir := newTestFile(t)
	if _, err := f.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	items := defaults()
	items[0].Stock = domain.MustParse("18765.5 g")
	if err := f.CommitCheckout(ctx, items, testOrder("o-1")); err != nil {
		t.Fatalf("CommitCheckout: %v", err)
	}
	if err := f.CommitCheckout(ctx, items, testOrder("o-2")); err != nil {
		t.Fatalf("CommitCheckout: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, journalFile)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("journal should be removed after commit, stat err %v", err)
	}

	reopened, err := NewFile(dir, nil, nil)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	st, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := st.Items[0].Stock.CanonicalText(); got != "18765.5 g" {
		t.Fatalf("expected lossless stock, got %s", got)
	}
	if len(st.Orders) != 2 || st.Orders[1].ID != "o-2" {
		t.Fatalf("unexpected orders %+v", st.Orders)
	}
	line := st.Orders[0].Lines[0]
	if line.Quantity.CanonicalText() != "1234.5 g" || !st.Orders[0].GrandTotal.Equal(decimal.RequireFromString("30.8625")) {
		t.Fatalf("order did not round trip: %+v", st.Orders[0])
	}
	if !st.Orders[0].PlacedAt.Equal(testOrder("o-1").PlacedAt) {
		t.Fatalf("time mismatch: %v", st.Orders[0].PlacedAt)
	}
}

func TestFileSaveInventoryKeepsOrders(t *testing.T) {
	ctx := context.Background()
	f, dir := newTestFile(t)
	if err := f.CommitCheckout(ctx, defaults(), testOrder("o-1")); err != nil {
		t.Fatalf("CommitCheckout: %v", err)
	}
	if err := f.SaveInventory(ctx, defaults()[:1]); err != nil {
		t.Fatalf("SaveInventory: %v", err)
	}

	reopened, _ := NewFile(dir, nil, nil)
	st, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Items) != 1 || len(st.Orders) != 1 {
		t.Fatalf("expected 1 item and 1 order, got %d and %d", len(st.Items), len(st.Orders))
	}
}

func TestFileRollsJournalForward(t *testing.T) {
	ctx := context.Background()
	f, dir := newTestFile(t)

	items, _ := json.Marshal(defaults()[:1])
	orders, _ := json.Marshal([]domain.Order{testOrder("o-9")})
	mustWrite(t, filepath.Join(dir, inventoryFile+stagedSuffix), items)
	mustWrite(t, filepath.Join(dir, ordersFile+stagedSuffix), orders)
	j, _ := json.Marshal(journal{Files: []string{inventoryFile, ordersFile}})
	mustWrite(t, filepath.Join(dir, journalFile), j)

	st, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Items) != 1 || len(st.Orders) != 1 || st.Orders[0].ID != "o-9" {
		t.Fatalf("journal not rolled forward: %+v", st)
	}
	for _, name := range []string{journalFile, inventoryFile + stagedSuffix, ordersFile + stagedSuffix} {
		if _, err := os.Stat(filepath.Join(dir, name)); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("%s should be gone, stat err %v", name, err)
		}
	}
}

func TestFileDiscardsStagedWithoutJournal(t *testing.T) {
	ctx := context.Background()
	f, dir := newTestFile(t)

	orders, _ := json.Marshal([]domain.Order{testOrder("o-9")})
	mustWrite(t, filepath.Join(dir, ordersFile+stagedSuffix), orders)

	st, err := f.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Orders) != 0 {
		t.Fatalf("undecided commit must not be applied, got %d orders", len(st.Orders))
	}
	if _, err := os.Stat(filepath.Join(dir, ordersFile+stagedSuffix)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged file should be discarded, stat err %v", err)
	}
}

func TestFileCanceledContext(t *testing.T) {
	f, _ := newTestFile(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Ping(ctx); err == nil {
		t.Fatalf("expected ping to fail on canceled context")
	}
}

func mustWrite(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
