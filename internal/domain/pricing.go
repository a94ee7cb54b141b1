package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LineTotal prices a quantity. Gram-family prices are per kilogram; piece and
// liter prices are per unit. The result is not rounded.
func LineTotal(q Quantity, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("unit price cannot be negative")
	}
	q = ToBase(q)
	switch q.unit {
	case UnitGram:
		return q.magnitude.Div(thousand).Mul(unitPrice), nil
	case UnitPiece, UnitLiter:
		return q.magnitude.Mul(unitPrice), nil
	default:
		return decimal.Zero, &UnitMismatchError{Expected: UnitGram, Got: q.unit}
	}
}

// GrandTotal sums the unrounded line totals in order.
func GrandTotal(lines []CartLine) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, line := range lines {
		lt, err := line.Total()
		if err != nil {
			return decimal.Zero, fmt.Errorf("line %s: %w", line.ItemName, err)
		}
		total = total.Add(lt)
	}
	return total, nil
}

// FormatMoney rounds to two places for display.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
