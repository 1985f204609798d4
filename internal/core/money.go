// Package core holds the domain model of the bookkeeping engine: money,
// accounts, transactions, budgets, date windows and the error taxonomy.
//
// Amounts are fixed-point cents (int64) everywhere; floating point only
// appears for rates and percentages rounded at the presentation boundary.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point amount in cents.
type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) separators. Only strictly positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, InvalidArgumentf("amount is empty")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, InvalidArgumentf("amount must be positive")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, InvalidArgumentf("invalid amount %q", s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, InvalidArgumentf("invalid amount %q", s)
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, InvalidArgumentf("invalid amount %q", s)
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, InvalidArgumentf("amount out of range")
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, InvalidArgumentf("amount must be positive")
	}
	return cents, nil
}

// Units returns the decimal value as a float64 for display purposes.
// Use cents for all arithmetic.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return InvalidArgumentf("amount must be positive")
	}
	return nil
}

// CentsToUnits converts cents to a decimal float for presentation.
func CentsToUnits(cents int64) float64 {
	return float64(cents) / 100.0
}

// Round2 rounds to two decimal places, half away from zero. Applied once
// at the presentation boundary so accumulation stays exact.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percentage computes part/whole*100 rounded to two decimals. A zero
// whole yields 0 rather than an error or NaN.
func Percentage(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round2(float64(part) / float64(whole) * 100)
}
