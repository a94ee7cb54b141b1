package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
	"vegshop/internal/service/inventory"
)

type stubOrderWriter struct {
	orders []domain.Order
	items  [][]domain.InventoryItem
}

func (s *stubOrderWriter) CommitCheckout(_ context.Context, items []domain.InventoryItem, o domain.Order) error {
	s.items = append(s.items, items)
	s.orders = append(s.orders, o)
	return nil
}

type nopStore struct{}

func (nopStore) SaveInventory(context.Context, []domain.InventoryItem) error { return nil }

func newInventory(t *testing.T) *inventory.Service {
	t.Helper()
	ledger, err := inventory.NewLedger(nil)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	return inventory.New(ledger, nopStore{}, nil)
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,quantity,price,cost
Tomato,20 kg,25,15
Onion, 10 kg ,30,18
,,,
Tomato,500 g,26,16
Milk,20 l,56,`

	inv := newInventory(t)
	imp := NewCSVImporter(strings.NewReader(csvData), inv, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 rows applied, got %d", count)
	}

	tomato, err := inv.Get("Tomato")
	if err != nil {
		t.Fatalf("get tomato: %v", err)
	}
	if tomato.Stock.CanonicalText() != "20500 g" || !tomato.SellPrice.Equal(decimal.NewFromInt(26)) {
		t.Fatalf("unexpected tomato %+v", tomato)
	}
	milk, _ := inv.Get("Milk")
	if !milk.CostPrice.IsZero() {
		t.Fatalf("missing cost should be zero, got %s", milk.CostPrice)
	}
	if names := len(inv.List()); names != 3 {
		t.Fatalf("expected 3 items, got %d", names)
	}
}

func TestCSVImporter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		applied int
	}{
		{name: "missing column", data: "name,price\nTomato,25"},
		{name: "bad quantity", data: "name,quantity,price\nTomato,20 kg,25\nOnion,lots,30", wantErr: domain.ErrMalformedQuantity, applied: 1},
		{name: "bad price", data: "name,quantity,price\nTomato,20 kg,cheap", wantErr: domain.ErrInvalidInput},
		{name: "unit clash", data: "name,quantity,price\nTomato,20 kg,25\nTomato,3 pcs,25", wantErr: domain.ErrUnitMismatch, applied: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewCSVImporter(strings.NewReader(tt.data), newInventory(t), nil).Run(context.Background())
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if n != tt.applied {
				t.Fatalf("expected %d applied, got %d", tt.applied, n)
			}
		})
	}
}

func TestLegacyImporter(t *testing.T) {
	inv := newInventory(t)
	orders := &stubOrderWriter{}
	imp := NewLegacyImporter(inv, orders, inv.List, nil)
	n := 0
	imp.newID = func() string {
		n++
		return "id-" + string(rune('a'+n))
	}

	legacyInventory := `[
		{"name": "Tomato", "qty": "20.00 kg", "price": 25.0},
		{"name": "Milk", "qty": "20 liters", "price": 56},
		{"name": "Tomato", "qty": "500 g", "price": 26},
		{"name": "Mystery", "qty": "some", "price": 1}
	]`
	var report Report
	if err := imp.ImportInventory(context.Background(), strings.NewReader(legacyInventory), &report); err != nil {
		t.Fatalf("ImportInventory: %v", err)
	}
	if report.Items != 3 || report.Merged != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	tomato, _ := inv.Get("Tomato")
	if tomato.Stock.CanonicalText() != "20500 g" {
		t.Fatalf("expected merged tomato stock, got %s", tomato.Stock.CanonicalText())
	}

	legacyOrders := `[
		{"time": "2024-03-01 09:05:07", "phone": "9876543210",
		 "items": [{"name": "Tomato", "qty": "500 g", "price": 20}, {"name": "Milk", "qty": "1.5 liters", "price": 60}],
		 "total": 100.0},
		{"time": "yesterday", "phone": "9876543210", "items": [], "total": 0}
	]`
	if err := imp.ImportOrders(context.Background(), strings.NewReader(legacyOrders), &report); err != nil {
		t.Fatalf("ImportOrders: %v", err)
	}
	if report.Orders != 1 || report.Skipped != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	got := orders.orders[0]
	if got.PlacedAt.Year() != 2024 || got.PlacedAt.Location().String() != "UTC" {
		t.Fatalf("unexpected time %v", got.PlacedAt)
	}
	if domain.FormatMoney(got.GrandTotal) != "100.00" || len(got.Lines) != 2 {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(orders.items[0]) != 2 {
		t.Fatalf("orders should be written with the current inventory, got %d items", len(orders.items[0]))
	}
	if tomato, _ := inv.Get("Tomato"); tomato.Stock.CanonicalText() != "20500 g" {
		t.Fatalf("imported orders must not debit stock")
	}
}
