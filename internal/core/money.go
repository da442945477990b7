// Package core defines the domain entities of the budget tracker and the
// money/time primitives shared by every engine.
//
// Monetary amounts are exact decimals (github.com/shopspring/decimal). The
// persisted and returned scale is always 2 fractional digits; intermediate
// arithmetic keeps full precision and rounds HALF_UP only at the edge.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnit is the smallest currency step (one cent).
var MinorUnit = decimal.New(1, -2)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
)

// RoundMoney rounds an amount HALF_UP to 2 fractional digits.
// decimal.Round rounds half away from zero, which is HALF_UP for the
// non-negative magnitudes this system deals in.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseAmount converts a user-supplied decimal string to a money amount.
// Both dot (12.34) and comma (12,34) separators are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Exponent() < -2 {
		return decimal.Zero, ErrInvalidAmount
	}
	return RoundMoney(d), nil
}

// ValidateAmount checks that an amount is a positive magnitude at money scale.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	if !d.Equal(RoundMoney(d)) {
		return ErrInvalidAmount
	}
	return nil
}
