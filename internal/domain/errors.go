package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates the caller supplied a missing or out of range field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedQuantity indicates quantity text could not be parsed.
	ErrMalformedQuantity = errors.New("malformed quantity")
	// ErrUnitMismatch indicates two quantities belong to different unit families.
	ErrUnitMismatch = errors.New("unit mismatch")
	// ErrInsufficientStock indicates the requested quantity exceeds what is on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrUnknownItem indicates no inventory record exists for the name.
	ErrUnknownItem = errors.New("unknown item")
	// ErrDuplicateItem indicates an inventory record with the name already exists.
	ErrDuplicateItem = errors.New("duplicate item")
	// ErrUnknownLine indicates the cart has no line with the given id.
	ErrUnknownLine = errors.New("unknown cart line")
	// ErrInvalidPhone indicates the customer phone is not exactly 10 digits.
	ErrInvalidPhone = errors.New("phone must be 10 digits")
	// ErrEmptyCart indicates checkout was attempted with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrPersistence indicates the store could not be read or written.
	ErrPersistence = errors.New("persistence failure")
)

// UnitMismatchError names both sides of a rejected cross-family operation.
type UnitMismatchError struct {
	Item     string
	Expected Unit
	Got      Unit
}

func (e *UnitMismatchError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("unit mismatch for %s: expected %s, got %s", e.Item, e.Expected.label(), e.Got.label())
	}
	return fmt.Sprintf("unit mismatch: expected %s, got %s", e.Expected.label(), e.Got.label())
}

func (e *UnitMismatchError) Unwrap() error { return ErrUnitMismatch }

// InsufficientStockError reports how much was requested against how much is available.
type InsufficientStockError struct {
	Item      string
	Requested Quantity
	Available Quantity
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		e.Item, FormatQuantity(e.Requested), FormatQuantity(e.Available))
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError wraps a store failure so callers can match ErrPersistence.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
