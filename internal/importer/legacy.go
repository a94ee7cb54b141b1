package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vegshop/internal/domain"
)

const legacyTimeLayout = "2006-01-02 15:04:05"

type legacyItem struct {
	Name  string          `json:"name"`
	Qty   string          `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Cost  decimal.Decimal `json:"cost"`
}

type legacyOrder struct {
	Time  string          `json:"time"`
	Phone string          `json:"phone"`
	Items []legacyItem    `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// OrderWriter records an imported order. items is the inventory as it stands;
// imported orders never debit stock.
type OrderWriter interface {
	CommitCheckout(ctx context.Context, items []domain.InventoryItem, order domain.Order) error
}

// Report summarizes a legacy import.
type Report struct {
	Items   int
	Merged  int
	Orders  int
	Skipped int
}

// LegacyImporter migrates the flat inventory.json and customers.json files.
type LegacyImporter struct {
	stock     StockWriter
	orders    OrderWriter
	inventory func() []domain.InventoryItem
	logger    *zap.Logger
	newID     func() string
}

func NewLegacyImporter(stock StockWriter, orders OrderWriter, inventory func() []domain.InventoryItem, logger *zap.Logger) *LegacyImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LegacyImporter{stock: stock, orders: orders, inventory: inventory, logger: logger, newID: uuid.NewString}
}

// ImportInventory restocks every legacy record. Records sharing a name are
// merged through AddStock rather than rejected.
func (l *LegacyImporter) ImportInventory(ctx context.Context, r io.Reader, report *Report) error {
	var items []legacyItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return fmt.Errorf("decode legacy inventory: %w", err)
	}
	seen := map[string]bool{}
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		qty, err := domain.ParseText(it.Qty)
		if err != nil {
			l.logger.Warn("importer: skipping legacy item", zap.String("item", name), zap.Error(err))
			report.Skipped++
			continue
		}
		if _, err := l.stock.AddStock(ctx, name, qty, it.Price, it.Cost); err != nil {
			return fmt.Errorf("import %q: %w", name, err)
		}
		if seen[name] {
			l.logger.Info("importer: merged duplicate legacy item", zap.String("item", name))
			report.Merged++
		}
		seen[name] = true
		report.Items++
	}
	return nil
}

// ImportOrders records each legacy order with a fresh id. Legacy timestamps
// carry no zone and are read as UTC.
func (l *LegacyImporter) ImportOrders(ctx context.Context, r io.Reader, report *Report) error {
	var orders []legacyOrder
	if err := json.NewDecoder(r).Decode(&orders); err != nil {
		return fmt.Errorf("decode legacy orders: %w", err)
	}
	for i, lo := range orders {
		order, err := l.convertOrder(lo)
		if err != nil {
			l.logger.Warn("importer: skipping legacy order", zap.Int("index", i), zap.Error(err))
			report.Skipped++
			continue
		}
		if err := l.orders.CommitCheckout(ctx, l.inventory(), order); err != nil {
			return fmt.Errorf("import order %d: %w", i, err)
		}
		report.Orders++
	}
	return nil
}

func (l *LegacyImporter) convertOrder(lo legacyOrder) (domain.Order, error) {
	placedAt, err := time.ParseInLocation(legacyTimeLayout, strings.TrimSpace(lo.Time), time.UTC)
	if err != nil {
		return domain.Order{}, fmt.Errorf("time %q: %w", lo.Time, err)
	}
	phone, err := domain.NormalizePhone(lo.Phone)
	if err != nil {
		return domain.Order{}, err
	}
	lines := make([]domain.CartLine, 0, len(lo.Items))
	for _, it := range lo.Items {
		qty, err := domain.ParseText(it.Qty)
		if err != nil {
			return domain.Order{}, fmt.Errorf("line %q: %w", it.Name, err)
		}
		lines = append(lines, domain.CartLine{
			ID:        l.newID(),
			ItemName:  strings.TrimSpace(it.Name),
			Quantity:  qty,
			UnitPrice: it.Price,
		})
	}
	total, err := domain.GrandTotal(lines)
	if err != nil {
		return domain.Order{}, err
	}
	if !lo.Total.IsZero() && !lo.Total.Equal(total) {
		l.logger.Info("importer: legacy total differs from recomputed total",
			zap.String("legacy", lo.Total.String()),
			zap.String("recomputed", total.String()))
	}
	return domain.Order{
		ID:         l.newID(),
		PlacedAt:   placedAt,
		Phone:      phone,
		Lines:      lines,
		GrandTotal: total,
	}, nil
}
