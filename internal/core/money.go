// Package core holds the domain model of the wedding ledger: expenses, the
// payment history, the budget aggregate root, and the derived summary.
//
// This file contains the Money type and amount parsing. Amounts are whole
// currency units (no minor units) stored as int64.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a whole-unit currency amount. Wedding budgets routinely reach
// eight digits, so the representation is int64 throughout.
type Money struct {
	Units int64
}

// Validate rejects negative amounts. Zero is a valid amount (an
// unconfigured budget is represented as zero).
func (m Money) Validate() error {
	if m.Units < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount converts a user-entered amount string to Money. It accepts
// optional thousands separators (commas or spaces) and rejects signs,
// decimals and anything non-numeric.
//
// Examples:
//
//	ParseAmount("50000000")   -> 50_000_000
//	ParseAmount("2,000,000")  -> 2_000_000
//	ParseAmount("-100")       -> error
//	ParseAmount("12.50")      -> error (no minor units)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	var b strings.Builder
	for _, r := range s {
		if r == ',' || unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return Money{}, ErrInvalidAmount
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Units: v}, nil
}

// Format renders the amount with comma thousands separators for logs and
// exports. Calculations always use Units directly.
func (m Money) Format() string {
	neg := m.Units < 0
	u := m.Units
	if neg {
		u = -u
	}
	s := strconv.FormatInt(u, 10)
	if len(s) > 3 {
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		parts = append([]string{s}, parts...)
		s = strings.Join(parts, ",")
	}
	if neg {
		return "-" + s
	}
	return s
}
