// Package core provides the domain model and the in-memory aggregation
// engine: financial summaries, budget projections, and budget-alert
// evaluation.
//
// This file contains helpers for parsing and formatting monetary amounts.
// Amounts are exact decimals (shopspring/decimal); direction is carried by
// the transaction's income flag, never by a signed amount.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a non-negative amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Explicit signs, empty strings, and non-numeric input are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Sign is carried by the income flag, not the amount
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with exactly two decimal places for
// user-facing currency strings ("50.00"). Use the raw decimal for
// calculations.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
