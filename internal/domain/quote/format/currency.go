package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency formats an amount with the rupee glyph, Indian digit grouping and
// up to two fractional digits: 1234567 -> "₹12,34,567", 1234.5 -> "₹1,234.5".
func Currency(amount float64) string {
	sign, whole, frac := split(amount)
	frac = strings.TrimRight(frac, "0")
	out := sign + "₹" + whole
	if frac != "" {
		out += "." + frac
	}
	return out
}

// PlainCurrency is the document variant of Currency. It uses the "Rs."
// prefix, which the core PDF fonts can draw, and shows either no fraction or
// exactly two digits: 1234.5 -> "Rs. 1,234.50".
func PlainCurrency(amount float64) string {
	sign, whole, frac := split(amount)
	out := sign + "Rs. " + whole
	if frac != "00" {
		out += "." + frac
	}
	return out
}

// Quantity shows integral quantities without decimals and everything else
// with two.
func Quantity(q float64) string {
	q = finite(q)
	if q == math.Trunc(q) && math.Abs(q) < 1e15 {
		return strconv.FormatInt(int64(q), 10)
	}
	return strconv.FormatFloat(q, 'f', 2, 64)
}

func split(amount float64) (sign, whole, frac string) {
	d := decimal.NewFromFloat(finite(amount)).Round(2)
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	parts := strings.SplitN(d.StringFixed(2), ".", 2)
	return sign, applyIndianGrouping(parts[0]), parts[1]
}

// applyIndianGrouping inserts commas into an integer string using the
// Indian numbering system: the rightmost 3 digits form the first group,
// then every 2 digits form subsequent groups.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}
	return result
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
