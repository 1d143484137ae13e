// Package core provides revenue parsing and formatting utilities.
//
// This file contains functions for parsing monetary amounts from CRM exports
// and rendering them for the dashboard.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string into a revenue amount.
//
// It accepts both dot (1234.50) and comma (1234,50) decimal separators, and
// thousands separators (1,234.50, 1.234,50, 12,000, 1,234,567). A single
// comma followed by exactly three digits groups thousands.
// Negative values are allowed so credit notes survive the import.
//
// Examples:
//
//	ParseAmount("1200")      -> 1200, nil
//	ParseAmount("12,5")      -> 12.5, nil
//	ParseAmount("1,234.50")  -> 1234.5, nil
//	ParseAmount("12,000")    -> 12000, nil
//	ParseAmount("1.234,50")  -> 1234.5, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = normalizeSeparators(s)

	for i, r := range s {
		if (r == '-' || r == '+') && i == 0 {
			continue
		}
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// normalizeSeparators rewrites the input so that '.' is the only decimal
// separator and thousands separators are gone.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		// 1.234,50
		s = strings.ReplaceAll(s, ".", "")
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0 && lastComma >= 0:
		// 1,234.50
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0 && strings.Count(s, ",") == 1 && !isThousandsGroup(s, lastComma):
		return strings.Replace(s, ",", ".", 1)
	case lastComma >= 0:
		// 1,234,567
		return strings.ReplaceAll(s, ",", "")
	}
	return s
}

// isThousandsGroup reports whether the single comma at i groups thousands,
// as in 12,000: exactly three digits follow it and the integer part is one
// to three digits without a leading zero. 12,5 and 0,125 stay decimals.
func isThousandsGroup(s string, i int) bool {
	intPart := strings.TrimLeft(s[:i], "+-")
	return len(s)-i-1 == 3 && len(intPart) >= 1 && len(intPart) <= 3 && intPart[0] != '0'
}

// FormatEuros formats an amount with thousands separators and the given
// number of decimals, e.g. "12,345 €" or "1,234.50 €".
func FormatEuros(d decimal.Decimal, places int32) string {
	return GroupThousands(d.StringFixed(places)) + " €"
}

// GroupThousands inserts ',' between groups of three digits of the integer
// part of a plain decimal string.
func GroupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		return "-" + out
	}
	return out
}
