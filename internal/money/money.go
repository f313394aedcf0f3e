// Package money converts user supplied amounts into integer minor units.
//
// Invariants:
//   - Amount is always stored in cents, never as a float.
//   - Parsed amounts are strictly positive, have at most two fractional
//     digits and never exceed MaxAmount.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits of the ledger currency.
const Scale = 2

// MaxAmount is the largest amount accepted for a single operation (10^13 major units).
const MaxAmount Amount = 1_000_000_000_000_000

const (
	// maxInputLen bounds the textual form of an amount.
	maxInputLen = 64
	// maxIntegerDigits is the number of integer digits of MaxAmount in major units.
	maxIntegerDigits = 14
)

var (
	// ErrInvalidAmount is returned for non-numeric, non-positive or overly precise amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountTooLarge is returned when an amount exceeds MaxAmount.
	ErrAmountTooLarge = fmt.Errorf("%w: exceeds maximum", ErrInvalidAmount)
)

// Amount is a monetary amount in minor units (cents).
type Amount int64

// Parse converts a decimal string in major units ("12.5", "100") into an Amount.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if d.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s is not positive", ErrInvalidAmount, d.String())
	}

	cents := d.Shift(Scale)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: more than %d fractional digits", ErrInvalidAmount, Scale)
	}
	if cents.GreaterThan(decimal.NewFromInt(int64(MaxAmount))) {
		return 0, ErrAmountTooLarge
	}

	return Amount(cents.IntPart()), nil
}

// parseDecimal parses s and rejects magnitudes that cannot be a ledger amount
// before any arithmetic scales the coefficient by the exponent.
func parseDecimal(s string) (decimal.Decimal, error) {
	if len(s) > maxInputLen {
		return decimal.Decimal{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidAmount, maxInputLen)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}

	exp := int(d.Exponent())
	if exp < -maxInputLen {
		return decimal.Decimal{}, fmt.Errorf("%w: more than %d fractional digits", ErrInvalidAmount, Scale)
	}
	if d.NumDigits()+exp > maxIntegerDigits {
		return decimal.Decimal{}, ErrAmountTooLarge
	}
	return d, nil
}

// FromMajor builds an Amount from whole major units. Intended for constants and tests.
func FromMajor(units int64) Amount {
	return Amount(units * 100)
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String formats the amount in major units with two fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// MarshalJSON encodes the amount as a JSON number in major units.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or string in major units.
// Zero and negative values are allowed here since balances may be zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	d, err := parseDecimal(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	cents := d.Shift(Scale)
	if !cents.IsInteger() {
		return fmt.Errorf("%w: more than %d fractional digits", ErrInvalidAmount, Scale)
	}
	*a = Amount(cents.IntPart())
	return nil
}
