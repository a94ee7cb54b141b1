package domain

import "github.com/shopspring/decimal"

// CartLine is a requested quantity with the sell price captured when it was added.
type CartLine struct {
	ID        string          `json:"id"`
	ItemName  string          `json:"name"`
	Quantity  Quantity        `json:"qty"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Total prices the line at its snapshot price.
func (l CartLine) Total() (decimal.Decimal, error) {
	return LineTotal(l.Quantity, l.UnitPrice)
}
