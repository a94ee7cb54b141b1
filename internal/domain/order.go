package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable record of one committed checkout.
type Order struct {
	ID         string          `json:"id"`
	PlacedAt   time.Time       `json:"time"`
	Phone      string          `json:"phone"`
	Lines      []CartLine      `json:"items"`
	GrandTotal decimal.Decimal `json:"total"`
}

// NormalizePhone trims surrounding spaces and requires exactly ten ASCII digits.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) != 10 {
		return "", fmt.Errorf("%w: got %q", ErrInvalidPhone, phone)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: got %q", ErrInvalidPhone, phone)
		}
	}
	return phone, nil
}
