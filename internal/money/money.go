// Package money holds the fixed-point helpers used for every monetary value.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds to two fractional digits.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}

	if d.GreaterThan(hi) {
		return hi
	}

	return d
}

// Sum adds every value.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}

	return total
}

// Parse reads an amount written either in European ("1.234,56") or
// US ("1,234.56") notation. When both separators appear the last one is the
// decimal mark. A lone separator followed by exactly three digits groups
// thousands ("1,500", "12.345").
func Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.NewReplacer("$", "", "€", "", " ", "", "\u00a0", "").Replace(clean)

	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case lastComma >= 0 && lastDot >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case lastComma >= 0:
		clean = normalizeSingle(clean, ",")
	case lastDot >= 0:
		clean = normalizeSingle(clean, ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return Round2(d), nil
}

// normalizeSingle handles amounts that use only sep. Repeated separators or a
// lone one followed by three digits group thousands; otherwise sep is the
// decimal mark.
func normalizeSingle(s, sep string) string {
	i := strings.LastIndex(s, sep)
	intPart := strings.TrimLeft(s[:i], "+-")

	if strings.Count(s, sep) > 1 || (len(s)-i-1 == 3 && intPart != "" && intPart != "0") {
		return strings.ReplaceAll(s, sep, "")
	}

	return strings.Replace(s, sep, ".", 1)
}

// Format renders d with two decimals, e.g. "1234.50".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
