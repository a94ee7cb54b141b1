package receipt

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"vegshop/internal/domain"
)

const (
	ContentType = "text/plain; charset=utf-8"

	timeLayout     = "2006-01-02 15:04:05"
	filenameLayout = "20060102_150405"
)

// Document is a rendered receipt ready to be downloaded or delivered.
type Document struct {
	OrderID     string
	Filename    string
	ContentType string
	Body        []byte
}

// Renderer turns a committed order into a plain-text receipt.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// Render lays out one row per line with the display quantity, the snapshot
// price, and the rounded line amount.
func (r *Renderer) Render(order domain.Order) (Document, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Receipt for %s\n", order.Phone)
	fmt.Fprintf(&buf, "Order: %s\n", order.ID)
	fmt.Fprintf(&buf, "Date: %s\n\n", order.PlacedAt.UTC().Format(timeLayout))

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Item\tQty\tPrice\tAmount\t")
	for _, line := range order.Lines {
		amount, err := line.Total()
		if err != nil {
			return Document{}, fmt.Errorf("render line %s: %w", line.ItemName, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			line.ItemName,
			domain.FormatQuantity(line.Quantity),
			domain.FormatMoney(line.UnitPrice),
			domain.FormatMoney(amount))
	}
	if err := tw.Flush(); err != nil {
		return Document{}, err
	}
	fmt.Fprintf(&buf, "\nTotal: ₹%s\n", domain.FormatMoney(order.GrandTotal))

	return Document{
		OrderID:     order.ID,
		Filename:    Filename(order),
		ContentType: ContentType,
		Body:        buf.Bytes(),
	}, nil
}

// Filename is receipt_<YYYYMMDD_HHMMSS>.txt for the order's placement time.
func Filename(order domain.Order) string {
	return "receipt_" + order.PlacedAt.UTC().Format(filenameLayout) + ".txt"
}
