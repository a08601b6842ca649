package layout

import "strings"

// Measurer reports the printed width of s in millimetres.
type Measurer interface {
	TextWidth(f Font, s string) float64
}

// Wrap breaks text into lines no wider than width, greedily packing as many
// words per line as fit. A word wider than the column is split across lines.
// Blank text yields a single empty line.
func Wrap(m Measurer, f Font, text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, w := range words {
		candidate := w
		if current != "" {
			candidate = current + " " + w
		}
		if m.TextWidth(f, candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if m.TextWidth(f, w) <= width {
			current = w
			continue
		}
		pieces := splitWord(m, f, w, width)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// splitWord cuts an overlong word into pieces that fit width, keeping at
// least one rune per piece.
func splitWord(m Measurer, f Font, word string, width float64) []string {
	var pieces []string
	runes := []rune(word)
	for len(runes) > 0 {
		n := 1
		for n < len(runes) && m.TextWidth(f, string(runes[:n+1])) <= width {
			n++
		}
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	return pieces
}

const ellipsis = "..."

// truncate keeps at most n lines. When lines are dropped the last kept line
// is shortened until it fits width with a trailing ellipsis.
func truncate(m Measurer, f Font, lines []string, n int, width float64) []string {
	if n < 1 || len(lines) <= n {
		return lines
	}
	out := append([]string(nil), lines[:n]...)
	last := []rune(out[n-1])
	for len(last) > 0 && m.TextWidth(f, strings.TrimRight(string(last), " ")+ellipsis) > width {
		last = last[:len(last)-1]
	}
	out[n-1] = strings.TrimRight(string(last), " ") + ellipsis
	return out
}
