package gofpdf

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/jung-kurt/gofpdf"

	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/domain/quote/pdf"
	"valour-interiors/quotes_backend/internal/domain/quote/pdf/layout"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

const logoImage = "logo"

var _ pdf.Generator = (*Generator)(nil)

type Generator struct {
	engine *layout.Engine
	logo   *layout.Logo
	log    *logger.Logger
}

// New builds a generator for the given letterhead. logo may be nil, in which
// case documents are drawn without one. A logo gofpdf cannot read is logged
// and dropped here, so the letterhead is laid out as if there were none.
func New(lh layout.Letterhead, logo *layout.Logo, log *logger.Logger, opts ...layout.EngineOption) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	if logo != nil {
		if err := checkLogo(logo); err != nil {
			log.WarnErr(context.Background(), "quote.pdf.logo_skipped", err)
			logo = nil
		}
	}
	return &Generator{
		engine: layout.NewEngine(NewMeasurer(), lh, opts...),
		logo:   logo,
		log:    log,
	}
}

func (g *Generator) Generate(q quote.Quote) (quote.Document, error) {
	doc := g.engine.Layout(q, g.logo)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("quotes_backend", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(layout.Margin, layout.Margin, layout.Margin)
	pdf.SetLineWidth(0.2)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	withLogo := false
	if doc.Logo != nil {
		pdf.RegisterImageOptionsReader(logoImage, gofpdf.ImageOptions{ImageType: doc.Logo.Format}, bytes.NewReader(doc.Logo.Data))
		if err := pdf.Error(); err != nil {
			g.log.WarnErr(g.log.WithField(context.Background(), "quotation_number", q.Number), "quote.pdf.logo_skipped", err)
			pdf.ClearError()
		} else {
			withLogo = true
		}
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, el := range page.Elements {
			draw(pdf, tr, el, doc.Logo, withLogo)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.log.Error(g.log.WithField(context.Background(), "quotation_number", q.Number), "quote.pdf.output_failed", err)
		return quote.Document{}, fmt.Errorf("render quotation %s: %w", q.Number, err)
	}
	return quote.Document{
		Filename: doc.Filename,
		Data:     buf.Bytes(),
		Pages:    len(doc.Pages),
	}, nil
}

func checkLogo(logo *layout.Logo) error {
	check := gofpdf.New("P", "mm", "A4", "")
	check.RegisterImageOptionsReader(logoImage, gofpdf.ImageOptions{ImageType: logo.Format}, bytes.NewReader(logo.Data))
	return check.Error()
}

func draw(pdf *gofpdf.Fpdf, tr func(string) string, el layout.Element, logo *layout.Logo, withLogo bool) {
	switch e := el.(type) {
	case layout.Rect:
		style := ""
		if e.Fill != nil {
			pdf.SetFillColor(e.Fill.R, e.Fill.G, e.Fill.B)
			style += "F"
		}
		if e.Stroke != nil {
			pdf.SetDrawColor(e.Stroke.R, e.Stroke.G, e.Stroke.B)
			style += "D"
		}
		if style != "" {
			pdf.Rect(e.X, e.Y, e.W, e.H, style)
		}
	case layout.Line:
		pdf.SetDrawColor(e.Color.R, e.Color.G, e.Color.B)
		pdf.Line(e.X1, e.Y1, e.X2, e.Y2)
	case layout.Text:
		if e.Value == "" {
			return
		}
		pdf.SetFont(e.Font.Family, e.Font.Style, e.Font.Size)
		pdf.SetTextColor(e.Color.R, e.Color.G, e.Color.B)
		s := tr(e.Value)
		x := e.X
		switch e.Align {
		case layout.AlignCenter:
			x -= pdf.GetStringWidth(s) / 2
		case layout.AlignRight:
			x -= pdf.GetStringWidth(s)
		}
		pdf.Text(x, e.Y, s)
	case layout.Image:
		if !withLogo {
			return
		}
		pdf.ImageOptions(logoImage, e.X, e.Y, e.W, e.H, false, gofpdf.ImageOptions{ImageType: logo.Format}, 0, "")
	}
}

// Measurer measures text with the core font metrics gofpdf draws with.
// Safe for concurrent use.
type Measurer struct {
	mu  sync.Mutex
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func NewMeasurer() *Measurer {
	pdf := gofpdf.New("P", "mm", "A4", "")
	return &Measurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *Measurer) TextWidth(f layout.Font, s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(f.Family, f.Style, f.Size)
	return m.pdf.GetStringWidth(m.tr(s))
}
