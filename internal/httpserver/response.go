package httpserver

import (
	"time"

	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
)

type itemView struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	Stock     string `json:"stock"`
	Unit      string `json:"unit"`
	Price     string `json:"price"`
	Cost      string `json:"cost,omitempty"`
	Available bool   `json:"available"`
}

type lineView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Amount   string `json:"amount"`
}

type cartView struct {
	Lines []lineView `json:"lines"`
	Total string     `json:"total"`
}

type orderView struct {
	ID         string     `json:"id"`
	PlacedAt   time.Time  `json:"placedAt"`
	Phone      string     `json:"phone"`
	Lines      []lineView `json:"lines"`
	Total      string     `json:"total"`
	ReceiptURL string     `json:"receiptUrl"`
}

// toItemView renders an inventory record. Cost is only shown to the owner.
func toItemView(item domain.InventoryItem, withCost bool) itemView {
	v := itemView{
		Name:      item.Name,
		Quantity:  domain.FormatQuantity(item.Stock),
		Stock:     item.Stock.CanonicalText(),
		Unit:      string(item.Stock.Unit()),
		Price:     domain.FormatMoney(item.SellPrice),
		Available: !item.Stock.IsZero(),
	}
	if withCost {
		v.Cost = domain.FormatMoney(item.CostPrice)
	}
	return v
}

func toItemViews(items []domain.InventoryItem, withCost bool) []itemView {
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		out = append(out, toItemView(item, withCost))
	}
	return out
}

func toLineView(line domain.CartLine) lineView {
	amount, err := line.Total()
	if err != nil {
		amount = decimal.Zero
	}
	return lineView{
		ID:       line.ID,
		Name:     line.ItemName,
		Quantity: domain.FormatQuantity(line.Quantity),
		Price:    domain.FormatMoney(line.UnitPrice),
		Amount:   domain.FormatMoney(amount),
	}
}

func toLineViews(lines []domain.CartLine) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, line := range lines {
		out = append(out, toLineView(line))
	}
	return out
}

func toCartView(lines []domain.CartLine, total decimal.Decimal) cartView {
	return cartView{Lines: toLineViews(lines), Total: domain.FormatMoney(total)}
}

func toOrderView(o domain.Order) orderView {
	return orderView{
		ID:         o.ID,
		PlacedAt:   o.PlacedAt,
		Phone:      o.Phone,
		Lines:      toLineViews(o.Lines),
		Total:      domain.FormatMoney(o.GrandTotal),
		ReceiptURL: "/orders/" + o.ID + "/receipt",
	}
}
