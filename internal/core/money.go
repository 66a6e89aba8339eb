// Package core provides the domain model and the revenue aggregation logic.
//
// This file contains currency parsing and formatting helpers. Amounts are
// held as integer pence to keep aggregation exact.
package core

import (
	"strconv"
	"strings"
)

// CoerceAmountCents parses a spreadsheet cell into pence.
//
// Cells arrive as loosely formatted strings: "12.34", "£12.34", "1,234.56"
// or a decimal-comma variant. The second return value reports whether the
// cell was parseable; callers that tolerate bad amounts substitute zero
// rather than dropping the row.
//
// Examples:
//
//	CoerceAmountCents("12.34")    -> 1234, true
//	CoerceAmountCents("£1,234.5") -> 123450, true
//	CoerceAmountCents("abc")      -> 0, false
func CoerceAmountCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ".") {
		// Dot is the decimal separator; commas are thousands grouping.
		s = strings.ReplaceAll(s, ",", "")
	} else {
		// No dot: a single comma acts as the decimal separator.
		if strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		return int64(f*100.0 - 0.5), true
	}
	return int64(f*100.0 + 0.5), true
}

// Pounds returns the value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point drift.
func (m Money) Pounds() float64 {
	return float64(m.Cents) / 100.0
}

// divideCents divides a cent total by n with half-up rounding.
func divideCents(total, n int64) Money {
	if n == 0 {
		return Money{}
	}
	return Money{Cents: (total + n/2) / n}
}
