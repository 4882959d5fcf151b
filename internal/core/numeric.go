// Package core implements the report domain: table rows, numeric input
// normalization, per-row validation rules and totals aggregation.
//
// Amount fields are kept as display strings with a decimal comma
// ("1234,56"); arithmetic goes through ParseAmount which degrades malformed
// input to 0 instead of failing a sum.
package core

import (
	"math"
	"strconv"
	"strings"
)

// FormatInput cleans a raw amount string as typed by the user.
//
// The result contains only digits, at most one leading minus and at most one
// decimal comma with at most two fractional digits. A typed dot is accepted
// as a separator and rendered as a comma. Anything else is stripped.
//
// Examples:
//
//	FormatInput("1a2,345") -> "12,34"
//	FormatInput("1.5")     -> "1,5"
//	FormatInput("--12--")  -> "-12"
//	FormatInput(",5")      -> "0,5"
func FormatInput(s string) string {
	s = strings.ReplaceAll(s, ".", ",")

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	// A minus survives only at position 0; one anywhere else is removed,
	// not repositioned.
	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	// First separator wins, later separator characters are deleted.
	if i := strings.Index(cleaned, ","); i != -1 {
		cleaned = cleaned[:i+1] + strings.ReplaceAll(cleaned[i+1:], ",", "")
	}

	if strings.HasPrefix(cleaned, ",") {
		cleaned = "0" + cleaned
	}

	// Truncate, never round, the fraction to two digits.
	if i := strings.Index(cleaned, ","); i != -1 && len(cleaned) > i+3 {
		cleaned = cleaned[:i+3]
	}

	if negative {
		cleaned = "-" + cleaned
	}
	return cleaned
}

// FormatBlur normalizes an amount on field exit: no separator gains ",00",
// a short fraction is right-padded with zeros, a long one is truncated.
// Empty input stays empty, as does a lone minus with no digits behind it;
// the caller decides whether that means zero or a required-field failure.
// FormatBlur is idempotent.
func FormatBlur(s string) string {
	s = FormatInput(s)
	if s == "" || s == "-" {
		return ""
	}

	if !strings.Contains(s, ",") {
		return s + ",00"
	}

	integer, decimal, _ := strings.Cut(s, ",")
	for len(decimal) < 2 {
		decimal += "0"
	}
	return integer + "," + decimal[:2]
}

// ParseAmount converts a display string to a float for aggregation. The
// comma separator is replaced with a dot; an empty string or a failed parse
// yields 0, so a malformed row never aborts a sum.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ValidAmount reports whether s would survive ParseAmount without degrading
// to the zero fallback. Empty strings are accepted; required-field checks
// are a separate concern.
func ValidAmount(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return err == nil
}

// CleanRegistrationNumber strips everything but digits and caps the result
// at the 16 digits a KKT registration number may hold.
func CleanRegistrationNumber(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if len(cleaned) > registrationNumberLength {
		cleaned = cleaned[:registrationNumberLength]
	}
	return cleaned
}

// Round2 rounds half away from zero to two decimal places. Applied to the
// final VAT sum of a table, not per row.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
