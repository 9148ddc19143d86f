// Package money converts between decimal major currency units and the integer
// minor units (cents) stored in the database.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	minorPerMajor = 100

	// MaxMinor caps any nightly price at one million major units.
	MaxMinor int64 = 1_000_000 * minorPerMajor

	// Bounds on the decimal representation itself, checked before any
	// arithmetic so that inputs like 1e50000000 are never expanded.
	maxExponent = 18
	maxDigits   = 36
	maxInputLen = 64
)

var (
	hundred  = decimal.NewFromInt(minorPerMajor)
	maxMajor = FromMinor(MaxMinor)

	ErrOutOfRange = errors.New("amount out of range")
)

// ToMinor converts major units to minor units, rounding half away from zero.
// Callers must have passed major through CheckMajor.
func ToMinor(major decimal.Decimal) int64 {
	return major.Mul(hundred).Round(0).IntPart()
}

func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// CheckMajor reports whether |d| is at most MaxMajor() and small enough to
// convert with ToMinor.
func CheckMajor(d decimal.Decimal) error {
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		return fmt.Errorf("%w: must be between -%s and %s", ErrOutOfRange, maxMajor, maxMajor)
	}
	if d.NumDigits() > maxDigits || d.Abs().GreaterThan(maxMajor) {
		return fmt.Errorf("%w: must be between -%s and %s", ErrOutOfRange, maxMajor, maxMajor)
	}
	return nil
}

// MaxMajor is MaxMinor in major units.
func MaxMajor() decimal.Decimal { return maxMajor }

// ParseMajor parses a decimal amount such as "50", "50.00" or "12.5".
// Amounts failing CheckMajor are rejected.
func ParseMajor(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxInputLen {
		return decimal.Zero, fmt.Errorf("%w: too many characters", ErrOutOfRange)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	if err := CheckMajor(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
