package entities

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is an allocation amount that may be unset.
// The zero value is the unset sentinel, which is distinct from a set zero.
type Quantity struct {
	value decimal.Decimal
	set   bool
}

// Unset is the empty quantity
var Unset = Quantity{}

// NewQuantity creates a set quantity, clamping negative values to zero
func NewQuantity(value decimal.Decimal) Quantity {
	if value.IsNegative() {
		value = decimal.Zero
	}
	return Quantity{value: value, set: true}
}

// QuantityFromInt creates a set quantity from an integer
func QuantityFromInt(value int64) Quantity {
	return NewQuantity(decimal.NewFromInt(value))
}

// ParseQuantity converts raw user input into a Quantity. Empty input yields
// Unset; anything that is not a non-negative number yields a set zero.
// It never fails.
func ParseQuantity(raw string) Quantity {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Unset
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return NewQuantity(decimal.Zero)
	}
	return NewQuantity(value)
}

// IsSet reports whether a value has been entered
func (q Quantity) IsSet() bool {
	return q.set
}

// Value returns the numeric value, zero when unset
func (q Quantity) Value() decimal.Decimal {
	if !q.set {
		return decimal.Zero
	}
	return q.value
}

// Allocating reports whether the quantity draws down stock
func (q Quantity) Allocating() bool {
	return q.set && q.value.IsPositive()
}

// Distributable reports whether the quantity is submitted as a line item
func (q Quantity) Distributable() bool {
	return q.set && q.value.GreaterThanOrEqual(decimal.NewFromInt(1))
}

// Equal compares two quantities including the set flag
func (q Quantity) Equal(other Quantity) bool {
	if q.set != other.set {
		return false
	}
	return !q.set || q.value.Equal(other.value)
}

func (q Quantity) String() string {
	if !q.set {
		return ""
	}
	return q.value.String()
}

// MarshalJSON writes null for unset quantities
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.set {
		return []byte("null"), nil
	}
	return q.value.MarshalJSON()
}

// UnmarshalJSON accepts null, numbers and numeric strings
func (q *Quantity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*q = Unset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*q = ParseQuantity(s)
		return nil
	}
	*q = ParseQuantity(string(data))
	return nil
}
