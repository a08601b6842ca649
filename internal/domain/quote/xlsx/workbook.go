// Package xlsx exports the quotation history as a spreadsheet.
package xlsx

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/domain/quote/format"
)

const sheetName = "Quotations"

var columns = []struct {
	name  string
	width float64
}{
	{"Quotation #", 14},
	{"Date", 16},
	{"Customer", 26},
	{"Phone", 16},
	{"City", 16},
	{"Project", 24},
	{"Items", 8},
	{"Status", 12},
	{"Delivered On", 16},
	{"Amount", 18},
}

// Filename names a history export generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("Quotations_%s.xlsx", t.Format("2006-01-02"))
}

// Build writes one row per quotation followed by status counts and the total
// value.
func Build(quotes []quote.Quote, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	for i, c := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, c.width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F97316"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	rowStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create row style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders(), NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("create amount style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create label style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "Quotation History")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetCellValue(sheetName, "A2", "Generated: "+format.DateOrdinal(generated))

	const headerRow = 4
	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheetName, cell, c.name)
	}
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), headerStyle)

	row := headerRow + 1
	for _, q := range quotes {
		delivered := ""
		if q.DeliveredOn != nil {
			delivered = format.DateOrdinal(*q.DeliveredOn)
		}
		values := []any{
			sanitize(q.Number),
			format.DateOrdinal(q.QuotationDate),
			sanitize(q.Customer.Name),
			sanitize(q.Customer.Phone),
			sanitize(q.Customer.City),
			sanitize(q.ProjectName),
			len(q.Items),
			string(quote.NormalizeStatus(string(q.Status))),
			delivered,
			quote.Finite(q.Amount),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), rowStyle)
		amountCell := fmt.Sprintf("%s%d", lastCol, row)
		f.SetCellStyle(sheetName, amountCell, amountCell, amountStyle)
		row++
	}

	stats := quote.Summarize(quotes)
	row++
	summary := []struct {
		label string
		value any
	}{
		{"Total Quotations", stats.Total},
		{"Created", stats.Created},
		{"Sent", stats.Sent},
		{"Delivered", stats.Delivered},
		{"Total Value", format.Currency(stats.TotalValue)},
	}
	for _, s := range summary {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.label)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), s.value)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitize stops spreadsheet apps from evaluating user text as a formula.
func sanitize(s string) string {
	if s == "" {
		return s
	}
	if strings.ContainsRune("=+-@\t\r|", rune(s[0])) {
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#CBD5E1", Style: 1}
	}
	return borders
}
