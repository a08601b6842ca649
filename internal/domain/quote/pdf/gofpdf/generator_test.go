package gofpdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/domain/quote/pdf"
	"valour-interiors/quotes_backend/internal/domain/quote/pdf/layout"
)

func testQuote(items int) quote.Quote {
	q := quote.Quote{
		Number:         "1001",
		Customer:       quote.Customer{Name: "Asha Nair", Phone: "9876543210"},
		TaxRatePercent: 18,
		ValidityDays:   30,
		QuotationDate:  time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < items; i++ {
		q.Items = append(q.Items, quote.Item{
			Category:    "Wardrobe",
			Description: "Sliding wardrobe with acrylic finish and loft storage above",
			Quantity:    2,
			UnitPrice:   45999.5,
		})
	}
	return q
}

func pngLogo(t *testing.T) *layout.Logo {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 249, G: 115, B: 22, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &layout.Logo{Data: buf.Bytes(), Format: "PNG"}
}

func TestGenerate(t *testing.T) {
	g := New(layout.Letterhead{Name: "Valour Interiors"}, nil, nil)

	doc, err := g.Generate(testQuote(1))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
	assert.Equal(t, 1, doc.Pages)
	assert.True(t, strings.HasPrefix(doc.Filename, "Quotation_Asha_Nair_"))
	assert.True(t, strings.HasSuffix(doc.Filename, ".pdf"))
}

func TestGenerateMultiPage(t *testing.T) {
	g := New(layout.Letterhead{Name: "Valour Interiors"}, nil, nil)

	doc, err := g.Generate(testQuote(60))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, doc.Pages, 2)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestGenerateWithLogo(t *testing.T) {
	g := New(layout.Letterhead{Name: "Valour Interiors"}, pngLogo(t), nil)

	doc, err := g.Generate(testQuote(2))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestGenerateSkipsUnreadableLogo(t *testing.T) {
	broken := &layout.Logo{Data: []byte("not an image"), Format: "PNG"}
	g := New(layout.Letterhead{Name: "Valour Interiors"}, broken, nil)
	assert.Nil(t, g.logo)

	// The letterhead keeps its left edge instead of leaving room for the logo.
	laid := g.engine.Layout(testQuote(1), g.logo)
	nameX := -1.0
	for _, el := range laid.Pages[0].Elements {
		_, isImage := el.(layout.Image)
		assert.False(t, isImage)
		if txt, ok := el.(layout.Text); ok && txt.Value == "Valour Interiors" && nameX < 0 {
			nameX = txt.X
		}
	}
	assert.Equal(t, layout.Margin, nameX)

	doc, err := g.Generate(testQuote(1))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestNewKeepsReadableLogo(t *testing.T) {
	g := New(layout.Letterhead{Name: "Valour Interiors"}, pngLogo(t), nil)
	require.NotNil(t, g.logo)

	laid := g.engine.Layout(testQuote(1), g.logo)
	assert.Contains(t, laid.Pages[0].Elements, layout.Image{X: layout.Margin, Y: 7, W: 28, H: 28})
}

func TestGeneratorSatisfiesPDFInterface(t *testing.T) {
	var gen pdf.Generator = New(layout.Letterhead{Name: "Valour Interiors"}, nil, nil)

	doc, err := gen.Generate(testQuote(1))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Pages)
}

func TestMeasurer(t *testing.T) {
	m := NewMeasurer()
	f := layout.Font{Family: "Helvetica", Size: 10}

	short := m.TextWidth(f, "Sofa")
	long := m.TextWidth(f, "Sofa set with ottoman")
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
	assert.Greater(t, m.TextWidth(layout.Font{Family: "Helvetica", Size: 20}, "Sofa"), short)
}
