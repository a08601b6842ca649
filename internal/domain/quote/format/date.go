package format

import (
	"fmt"
	"time"
)

// DateOrdinal renders t as "DD<suffix> Mon YYYY", e.g. "01st Jan 2024".
func DateOrdinal(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%02d%s %s %d", day, ordinalSuffix(day), t.Format("Jan"), t.Year())
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
