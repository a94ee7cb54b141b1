package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vegshop/internal/domain"
)

// StockWriter restocks an item, creating it when absent.
type StockWriter interface {
	AddStock(ctx context.Context, name string, quantity domain.Quantity, price, cost decimal.Decimal) (domain.InventoryItem, error)
}

// CSVImporter reads a name,quantity,price,cost price list and restocks each row.
// Repeated names accumulate.
type CSVImporter struct {
	reader *csv.Reader
	stock  StockWriter
	logger *zap.Logger
}

func NewCSVImporter(r io.Reader, stock StockWriter, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, stock: stock, logger: logger}
}

type csvRow struct {
	Line     int
	Name     string
	Quantity domain.Quantity
	Price    decimal.Decimal
	Cost     decimal.Decimal
}

// Run restocks every row and returns the number applied. It stops at the
// first invalid row; rows before it stay applied.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "quantity", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}
		item, err := i.stock.AddStock(ctx, row.Name, row.Quantity, row.Price, row.Cost)
		if err != nil {
			return imported, fmt.Errorf("row %d (%s): %w", row.Line, row.Name, err)
		}
		i.logger.Debug("importer: restocked",
			zap.String("item", item.Name),
			zap.String("stock", domain.FormatQuantity(item.Stock)))
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseRow returns nil for blank rows.
func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	name := pick(record, index, "name")
	qtyText := pick(record, index, "quantity")
	priceText := pick(record, index, "price")
	costText := pick(record, index, "cost")

	if name == "" && qtyText == "" && priceText == "" {
		return nil, nil
	}
	if name == "" {
		return nil, fmt.Errorf("row %d: %w: name required", line, domain.ErrInvalidInput)
	}
	qty, err := domain.ParseText(qtyText)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", line, err)
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w: price %q", line, domain.ErrInvalidInput, priceText)
	}
	cost := decimal.Zero
	if costText != "" {
		if cost, err = decimal.NewFromString(costText); err != nil {
			return nil, fmt.Errorf("row %d: %w: cost %q", line, domain.ErrInvalidInput, costText)
		}
	}
	return &csvRow{Line: line, Name: name, Quantity: qty, Price: price, Cost: cost}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
