package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const crore = 10_000_000

var units = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
}

var teens = []string{
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen",
	"Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// Scales below one crore. Every count taken against them is below one hundred.
var scales = []struct {
	value uint64
	label string
}{
	{100_000, "Lakh"},
	{1_000, "Thousand"},
	{100, "Hundred"},
}

// Words spells n in English using the Indian grouping
// (Crore, Lakh, Thousand, Hundred). Words(0) is "Zero".
func Words(n int64) string {
	if n == 0 {
		return "Zero"
	}
	prefix := ""
	u := uint64(n)
	if n < 0 {
		prefix = "Minus "
		u = uint64(-n)
	}

	// Split into base-crore chunks, least significant first.
	var chunks []uint64
	for u > 0 {
		chunks = append(chunks, u%crore)
		u /= crore
	}

	var words []string
	for depth := len(chunks) - 1; depth >= 0; depth-- {
		if chunks[depth] == 0 {
			continue
		}
		words = append(words, belowCrore(chunks[depth]))
		for i := 0; i < depth; i++ {
			words = append(words, "Crore")
		}
	}
	return prefix + strings.Join(words, " ")
}

func belowCrore(n uint64) string {
	var parts []string
	for _, s := range scales {
		if n >= s.value {
			parts = append(parts, twoDigits(n/s.value)+" "+s.label)
			n %= s.value
		}
	}
	if n > 0 {
		parts = append(parts, twoDigits(n))
	}
	return strings.Join(parts, " ")
}

func twoDigits(n uint64) string {
	switch {
	case n < 10:
		return units[n]
	case n < 20:
		return teens[n-10]
	}
	if unit := units[n%10]; unit != "" {
		return tens[n/10] + " " + unit
	}
	return tens[n/10]
}

// AmountInWords renders a rupee amount as
// "<rupees> Rupees[ and <paise> Paise] Only". The amount is rounded to
// paise before it is split, so no floating point reaches Words.
func AmountInWords(amount float64) string {
	d := decimal.NewFromFloat(finite(amount)).Round(2)
	prefix := ""
	if d.IsNegative() {
		prefix = "Minus "
		d = d.Abs()
	}
	rupees := d.IntPart()
	paise := d.Sub(decimal.NewFromInt(rupees)).Shift(2).IntPart()

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(Words(rupees))
	b.WriteString(" Rupees")
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(Words(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}
