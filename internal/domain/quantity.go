package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit is the unit tag carried by a Quantity.
type Unit string

const (
	// UnitUnspecified marks a bare number that has not been given a unit yet.
	UnitUnspecified Unit = ""
	UnitGram        Unit = "g"
	// UnitKilogram is surface syntax only; quantities are always stored in grams.
	UnitKilogram Unit = "kg"
	UnitPiece    Unit = "pcs"
	UnitLiter    Unit = "l"
)

func (u Unit) label() string {
	if u == UnitUnspecified {
		return "unspecified"
	}
	return string(u)
}

func (u Unit) known() bool {
	switch u {
	case UnitUnspecified, UnitGram, UnitKilogram, UnitPiece, UnitLiter:
		return true
	}
	return false
}

var unitTokens = map[string]Unit{
	"kg":     UnitKilogram,
	"kgs":    UnitKilogram,
	"g":      UnitGram,
	"pcs":    UnitPiece,
	"pc":     UnitPiece,
	"l":      UnitLiter,
	"liter":  UnitLiter,
	"liters": UnitLiter,
}

// LookupUnit resolves a case-insensitive unit token such as "kg" or "pcs".
func LookupUnit(token string) (Unit, bool) {
	u, ok := unitTokens[strings.ToLower(strings.TrimSpace(token))]
	return u, ok
}

var (
	quantityPattern  = regexp.MustCompile(`^\s*(.*?)\s*([A-Za-z]*)\s*$`)
	magnitudePattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
	thousand         = decimal.NewFromInt(1000)
)

// Quantity is an immutable non-negative magnitude in one of the base units.
type Quantity struct {
	magnitude decimal.Decimal
	unit      Unit
}

// NewQuantity validates the magnitude and converts kilograms to grams.
func NewQuantity(magnitude decimal.Decimal, unit Unit) (Quantity, error) {
	if !unit.known() {
		return Quantity{}, fmt.Errorf("%w: unknown unit %q", ErrMalformedQuantity, unit)
	}
	if magnitude.IsNegative() {
		return Quantity{}, fmt.Errorf("%w: magnitude cannot be negative", ErrMalformedQuantity)
	}
	q := ToBase(Quantity{magnitude: magnitude, unit: unit})
	if q.unit == UnitPiece && !q.magnitude.Equal(q.magnitude.Truncate(0)) {
		return Quantity{}, fmt.Errorf("%w: piece count must be whole, got %s", ErrMalformedQuantity, magnitude)
	}
	return q, nil
}

// MustParse parses text and panics when it is invalid. Intended for fixed catalogs and tests.
func MustParse(text string) Quantity {
	q, err := ParseText(text)
	if err != nil {
		panic(fmt.Sprintf("invalid quantity %q: %v", text, err))
	}
	return q
}

// ParseText reads "<magnitude> <unit>" text such as "2 kg", "500g" or "8 PCS".
// The unit is the trailing letter run. A missing or unknown unit fails; an
// empty or non-numeric magnitude such as "two" reads as zero.
func ParseText(text string) (Quantity, error) {
	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrMalformedQuantity, text)
	}
	if m[2] == "" {
		return Quantity{}, fmt.Errorf("%w: missing unit in %q", ErrMalformedQuantity, text)
	}
	unit, ok := LookupUnit(m[2])
	if !ok {
		return Quantity{}, fmt.Errorf("%w: unknown unit %q", ErrMalformedQuantity, m[2])
	}
	return NewQuantity(parseMagnitude(m[1]), unit)
}

// ParseNumeric wraps a bare number with no unit. The result must be given a
// unit with Resolve before it can be compared, priced, or debited.
func ParseNumeric(value decimal.Decimal) (Quantity, error) {
	return NewQuantity(value, UnitUnspecified)
}

func parseMagnitude(raw string) decimal.Decimal {
	if !magnitudePattern.MatchString(raw) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Resolve applies a unit token to an unspecified quantity. A quantity that
// already carries a unit is returned as is when the token is of the same family.
func (q Quantity) Resolve(token string) (Quantity, error) {
	unit, ok := LookupUnit(token)
	if !ok {
		return Quantity{}, fmt.Errorf("%w: unknown unit %q", ErrMalformedQuantity, token)
	}
	if q.unit == UnitUnspecified {
		return NewQuantity(q.magnitude, unit)
	}
	if q.unit != unit.Base() {
		return Quantity{}, &UnitMismatchError{Expected: q.unit, Got: unit.Base()}
	}
	return q, nil
}

func (q Quantity) Magnitude() decimal.Decimal { return q.magnitude }

func (q Quantity) Unit() Unit { return q.unit }

func (q Quantity) IsZero() bool { return q.magnitude.IsZero() }

// Equal reports exact equality of unit and magnitude.
func (q Quantity) Equal(other Quantity) bool {
	return q.unit == other.unit && q.magnitude.Equal(other.magnitude)
}

func (q Quantity) String() string { return FormatQuantity(q) }

// FormatQuantity renders q for display: "1.50 kg", "500 g", "8 pcs", "2.00 l".
func FormatQuantity(q Quantity) string {
	switch q.unit {
	case UnitGram:
		whole := q.magnitude.Round(0)
		if whole.GreaterThanOrEqual(thousand) {
			return q.magnitude.Div(thousand).StringFixed(2) + " kg"
		}
		return whole.StringFixed(0) + " g"
	case UnitPiece:
		return q.magnitude.Truncate(0).StringFixed(0) + " pcs"
	case UnitLiter:
		return q.magnitude.StringFixed(2) + " l"
	default:
		return q.magnitude.String()
	}
}

// CanonicalText renders q without rounding, e.g. "1234.5 g". It parses back exactly.
func (q Quantity) CanonicalText() string {
	if q.unit == UnitUnspecified {
		return q.magnitude.String()
	}
	return q.magnitude.String() + " " + string(q.unit)
}

// MarshalText stores the lossless canonical form.
func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.CanonicalText()), nil
}

func (q *Quantity) UnmarshalText(text []byte) error {
	parsed, err := ParseText(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
