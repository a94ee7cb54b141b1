package domain

import "github.com/shopspring/decimal"

// Base returns the canonical unit for u's family.
func (u Unit) Base() Unit {
	if u == UnitKilogram {
		return UnitGram
	}
	return u
}

func (u Unit) factor() decimal.Decimal {
	if u == UnitKilogram {
		return thousand
	}
	return decimal.NewFromInt(1)
}

// ToBase maps kilogram syntax to grams and passes every other unit through.
// Pieces and liters are separate families; nothing converts across families.
func ToBase(q Quantity) Quantity {
	if q.unit == q.unit.Base() {
		return q
	}
	return Quantity{magnitude: q.magnitude.Mul(q.unit.factor()), unit: q.unit.Base()}
}

// SameFamily reports whether a and b canonicalize to the same base unit.
// An unspecified quantity is never in any family.
func SameFamily(a, b Quantity) bool {
	ab, bb := ToBase(a).unit, ToBase(b).unit
	return ab != UnitUnspecified && ab == bb
}

// RequireSameFamily fails with a UnitMismatchError naming both units.
func RequireSameFamily(item string, stock, requested Quantity) error {
	if SameFamily(stock, requested) {
		return nil
	}
	return &UnitMismatchError{Item: item, Expected: ToBase(stock).unit, Got: ToBase(requested).unit}
}

// Add sums two quantities of the same family.
func Add(a, b Quantity) (Quantity, error) {
	if err := RequireSameFamily("", a, b); err != nil {
		return Quantity{}, err
	}
	a, b = ToBase(a), ToBase(b)
	return Quantity{magnitude: a.magnitude.Add(b.magnitude), unit: a.unit}, nil
}

// SubtractFloor subtracts b from a, clamping the result at zero.
func SubtractFloor(a, b Quantity) (Quantity, error) {
	if err := RequireSameFamily("", a, b); err != nil {
		return Quantity{}, err
	}
	a, b = ToBase(a), ToBase(b)
	left := a.magnitude.Sub(b.magnitude)
	if left.IsNegative() {
		left = decimal.Zero
	}
	return Quantity{magnitude: left, unit: a.unit}, nil
}

// Compare returns -1, 0 or +1 as a is less than, equal to, or greater than b.
func Compare(a, b Quantity) (int, error) {
	if err := RequireSameFamily("", a, b); err != nil {
		return 0, err
	}
	return ToBase(a).magnitude.Cmp(ToBase(b).magnitude), nil
}
