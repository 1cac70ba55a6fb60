package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as int64 minor units (two fractional digits).
// Decimal strings only exist at the API boundary; nothing in the core
// ever touches floating point.

var minorUnitsPerMajor = decimal.NewFromInt(100)

// ParseAmount converts a decimal string such as "150.50" into minor
// units. More than two fractional digits is a caller error, not a
// rounding opportunity.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("ParseAmount: %w", ErrInvalidAmount)
	}
	if d.Exponent() < -2 {
		return 0, fmt.Errorf("ParseAmount: more than 2 decimal places: %w", ErrInvalidAmount)
	}
	minor := d.Mul(minorUnitsPerMajor)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("ParseAmount: %w", ErrInvalidAmount)
	}
	return minor.IntPart(), nil
}

// FormatAmount renders minor units as a decimal string with exactly two
// fractional digits, e.g. 5000 -> "50.00".
func FormatAmount(minor int64) string {
	return decimal.NewFromInt(minor).Div(minorUnitsPerMajor).StringFixed(2)
}
