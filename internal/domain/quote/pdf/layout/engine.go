package layout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"valour-interiors/quotes_backend/internal/domain/quote"
	"valour-interiors/quotes_backend/internal/domain/quote/format"
)

// A4 portrait, millimetres.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 18.0
	TableWidth = PageWidth - 2*Margin
)

const (
	headerBandHeight  = 42.0
	logoSize          = 28.0
	overviewHeight    = 30.0
	tableHeaderHeight = 10.0
	rowMinHeight      = 8.0
	rowPadding        = 3.0
	linePitch         = 3.6
	cellPadding       = 2.0
	summaryHeight     = 36.0
	wordsMinHeight    = 18.0
	footerHeight      = 12.0

	minDescriptionWidth = 40.0
)

// Fractions of TableWidth for the fixed columns. Description takes the rest.
const (
	serialFrac    = 0.07
	categoryFrac  = 0.18
	quantityFrac  = 0.09
	unitPriceFrac = 0.16
	amountFrac    = 0.17
)

var (
	colorBand        = Color{15, 23, 42}
	colorWhite       = Color{255, 255, 255}
	colorMuted       = Color{203, 213, 225}
	colorText        = Color{51, 65, 85}
	colorInk         = Color{15, 23, 42}
	colorPanel       = Color{248, 250, 252}
	colorAccent      = Color{249, 115, 22}
	colorRule        = Color{226, 232, 240}
	colorSummaryFill = Color{255, 247, 237}
)

const family = "Helvetica"

var (
	fontTitle   = Font{family, "B", 18}
	fontBrand   = Font{family, "", 10}
	fontSmall   = Font{family, "", 9}
	fontHeading = Font{family, "B", 11}
	fontBody    = Font{family, "", 10}
	fontBold    = Font{family, "B", 10}
	fontTable   = Font{family, "", 9}
	fontTableB  = Font{family, "B", 9}
	fontTotal   = Font{family, "B", 12}
	fontFooter  = Font{family, "I", 9}
)

// Letterhead is the studio identity printed on every quotation.
type Letterhead struct {
	Name        string
	Tagline     string
	Phone       string
	Email       string
	Address     string
	TaxID       string
	PreparedBy  string
	Disclaimers []string
}

func (l Letterhead) contactLine() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{l.Phone, l.Email} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "  |  ")
}

// Columns holds the left edge of every table column plus the right edge of
// the table.
type Columns struct {
	Serial, Category, Description, Quantity, UnitPrice, Amount, End float64
}

func (c Columns) boundaries() []float64 {
	return []float64{c.Category, c.Description, c.Quantity, c.UnitPrice, c.Amount}
}

// TableColumns derives column positions from the printable width.
func TableColumns() Columns {
	serial := TableWidth * serialFrac
	category := TableWidth * categoryFrac
	qty := TableWidth * quantityFrac
	unit := TableWidth * unitPriceFrac
	amount := TableWidth * amountFrac
	desc := TableWidth - serial - category - qty - unit - amount
	if desc < minDescriptionWidth {
		desc = minDescriptionWidth
	}

	var c Columns
	c.Serial = Margin
	c.Category = c.Serial + serial
	c.Description = c.Category + category
	c.Quantity = c.Description + desc
	c.UnitPrice = c.Quantity + qty
	c.Amount = c.UnitPrice + unit
	c.End = c.Amount + amount
	return c
}

// Engine lays out quotations. It holds no per-document state, so one Engine
// may serve concurrent callers as long as its Measurer does.
type Engine struct {
	measure    Measurer
	letterhead Letterhead
	cols       Columns
	now        func() time.Time
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(m Measurer, lh Letterhead, opts ...EngineOption) *Engine {
	e := &Engine{
		measure:    m,
		letterhead: lh,
		cols:       TableColumns(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Layout produces the paginated document for q. logo may be nil.
func (e *Engine) Layout(q quote.Quote, logo *Logo) Document {
	b := &builder{
		Engine: e,
		doc: Document{
			Width:  PageWidth,
			Height: PageHeight,
			Title:  "Quotation " + q.Number,
			Logo:   logo,
		},
	}
	b.doc.Filename = Filename(q.Customer.Name, e.now())

	b.newPage()
	b.letterheadBand(logo != nil)
	b.overview(q)
	b.clientDetails(q.Customer)
	b.itemsTable(q.Items)

	totals := q.Totals()
	b.summary(totals, q.TaxRatePercent)
	b.amountInWords(totals.GrandTotal)
	b.notes(q.Notes)
	b.footer()
	return b.doc
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Filename is Quotation_<customer>_<unix millis>.pdf with whitespace in the
// customer name replaced by underscores.
func Filename(customer string, at time.Time) string {
	name := strings.Join(strings.Fields(customer), "_")
	name = unsafeFilename.ReplaceAllString(name, "")
	if name == "" {
		name = "Customer"
	}
	return fmt.Sprintf("Quotation_%s_%d.pdf", name, at.UnixMilli())
}

// builder accumulates pages for a single Layout call.
type builder struct {
	*Engine
	doc Document
	y   float64
}

func (b *builder) page() *Page {
	return &b.doc.Pages[len(b.doc.Pages)-1]
}

func (b *builder) add(els ...Element) {
	p := b.page()
	p.Elements = append(p.Elements, els...)
}

func (b *builder) newPage() {
	b.doc.Pages = append(b.doc.Pages, Page{})
	b.y = Margin
}

func (b *builder) limit() float64 {
	return PageHeight - Margin
}

// reserve starts a new page unless a block of height h fits below the cursor.
func (b *builder) reserve(h float64) {
	if b.y+h > b.limit() {
		b.newPage()
	}
}

func (b *builder) text(x, y float64, s string, f Font, c Color, a Align) {
	b.add(Text{X: x, Y: y, Value: s, Font: f, Color: c, Align: a})
}

func (b *builder) letterheadBand(withLogo bool) {
	b.add(Rect{X: 0, Y: 0, W: PageWidth, H: headerBandHeight, Fill: &colorBand})

	x := Margin
	if withLogo {
		b.add(Image{X: Margin, Y: 7, W: logoSize, H: logoSize})
		x = Margin + logoSize + 8
	}
	lh := b.letterhead
	b.text(x, 18, lh.Name, fontTitle, colorWhite, AlignLeft)
	if lh.Tagline != "" {
		b.text(x, 26, lh.Tagline, fontBrand, colorMuted, AlignLeft)
	}
	if lh.Address != "" {
		b.text(x, 32, lh.Address, fontSmall, colorMuted, AlignLeft)
	}

	right := PageWidth - Margin
	b.text(right, 18, "QUOTATION", fontHeading, colorAccent, AlignRight)
	if contact := lh.contactLine(); contact != "" {
		b.text(right, 32, contact, fontSmall, colorWhite, AlignRight)
	}
	if lh.TaxID != "" {
		b.text(right, 38, "GSTIN: "+lh.TaxID, fontSmall, colorWhite, AlignRight)
	}
	b.y = headerBandHeight + 6
}

func (b *builder) overview(q quote.Quote) {
	b.reserve(overviewHeight)
	top := b.y
	b.add(Rect{X: Margin, Y: top, W: TableWidth, H: overviewHeight, Fill: &colorPanel, Stroke: &colorRule})

	left := Margin + 4
	mid := Margin + TableWidth/2
	b.text(left, top+8, "Quotation Overview", fontHeading, colorInk, AlignLeft)
	b.text(left, top+16, "Quotation #: "+q.Number, fontBody, colorText, AlignLeft)
	b.text(mid, top+16, "Date: "+format.DateOrdinal(q.QuotationDate), fontBody, colorText, AlignLeft)
	b.text(left, top+24, "Valid Until: "+format.DateOrdinal(q.ValidUntil()), fontBody, colorText, AlignLeft)
	if q.ProjectName != "" {
		b.text(mid, top+24, "Project: "+q.ProjectName, fontBody, colorText, AlignLeft)
	}
	b.y = top + overviewHeight + 10
}

func (b *builder) clientDetails(c quote.Customer) {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+v)
		}
	}
	add("", c.Name)
	add("", c.Address)
	place := strings.Join(nonEmpty(c.City, c.State), ", ")
	if c.Pincode != "" && place != "" {
		place += " - " + c.Pincode
	} else if c.Pincode != "" {
		place = c.Pincode
	}
	add("", place)
	add("Phone: ", c.Phone)
	add("Email: ", c.Email)
	add("GSTIN: ", c.TaxID)

	h := 6 + 5*float64(len(lines)) + 4
	b.reserve(h)
	b.text(Margin, b.y, "Client Details", fontHeading, colorInk, AlignLeft)
	y := b.y + 6
	for i, l := range lines {
		f := fontBody
		if i == 0 {
			f = fontBold
		}
		b.text(Margin, y, l, f, colorText, AlignLeft)
		y += 5
	}
	b.y = y + 4
}

type row struct {
	category    []string
	description []string
	height      float64
}

func (b *builder) measureRow(it quote.Item) row {
	c := b.cols
	catWidth := c.Description - c.Category - 2*cellPadding
	descWidth := c.Quantity - c.Description - 2*cellPadding
	// A row never outgrows a fresh page below the table header.
	maxLines := int((b.limit() - Margin - tableHeaderHeight - rowPadding) / linePitch)
	r := row{
		category:    truncate(b.measure, fontTable, Wrap(b.measure, fontTable, it.Category, catWidth), maxLines, catWidth),
		description: truncate(b.measure, fontTable, Wrap(b.measure, fontTable, it.Description, descWidth), maxLines, descWidth),
	}
	lines := max(len(r.category), len(r.description))
	r.height = max(rowMinHeight, float64(lines)*linePitch+rowPadding)
	return r
}

func (b *builder) itemsTable(items []quote.Item) {
	rows := make([]row, len(items))
	for i, it := range items {
		rows[i] = b.measureRow(it)
	}

	first := 0.0
	if len(rows) > 0 {
		first = min(rows[0].height, b.limit()-Margin-tableHeaderHeight)
	}
	b.reserve(tableHeaderHeight + first)
	b.tableHeader()

	onPage := 0
	for i, it := range items {
		r := rows[i]
		if b.y+r.height > b.limit() && onPage > 0 {
			b.newPage()
			b.tableHeader()
			onPage = 0
		}
		b.itemRow(i, it, r)
		onPage++
	}
}

func (b *builder) tableHeader() {
	c := b.cols
	top := b.y
	b.add(Rect{X: Margin, Y: top, W: c.End - Margin, H: tableHeaderHeight, Fill: &colorAccent})
	base := top + 6.5
	b.text((c.Serial+c.Category)/2, base, "S.No", fontTableB, colorWhite, AlignCenter)
	b.text((c.Category+c.Description)/2, base, "Category", fontTableB, colorWhite, AlignCenter)
	b.text(c.Description+cellPadding, base, "Description", fontTableB, colorWhite, AlignLeft)
	b.text((c.Quantity+c.UnitPrice)/2, base, "Qty", fontTableB, colorWhite, AlignCenter)
	b.text(c.Amount-cellPadding, base, "Unit Price", fontTableB, colorWhite, AlignRight)
	b.text(c.End-cellPadding, base, "Amount", fontTableB, colorWhite, AlignRight)

	p := b.page()
	p.TableHeaders = append(p.TableHeaders, top)
	b.y = top + tableHeaderHeight
}

func (b *builder) itemRow(i int, it quote.Item, r row) {
	c := b.cols
	top := b.y
	fill := colorWhite
	if i%2 == 1 {
		fill = colorPanel
	}
	b.add(Rect{X: Margin, Y: top, W: c.End - Margin, H: r.height, Fill: &fill, Stroke: &colorRule})
	for _, x := range c.boundaries() {
		b.add(Line{X1: x, Y1: top, X2: x, Y2: top + r.height, Color: colorRule})
	}

	base := top + 5
	b.text((c.Serial+c.Category)/2, base, strconv.Itoa(i+1), fontTable, colorInk, AlignCenter)
	for j, l := range r.category {
		b.text((c.Category+c.Description)/2, base+float64(j)*linePitch, l, fontTable, colorInk, AlignCenter)
	}
	for j, l := range r.description {
		b.text(c.Description+cellPadding, base+float64(j)*linePitch, l, fontTable, colorInk, AlignLeft)
	}
	b.text((c.Quantity+c.UnitPrice)/2, base, format.Quantity(it.Quantity), fontTable, colorInk, AlignCenter)
	b.text(c.Amount-cellPadding, base, format.PlainCurrency(it.UnitPrice), fontTable, colorInk, AlignRight)
	b.text(c.End-cellPadding, base, format.PlainCurrency(it.LineTotal()), fontTable, colorInk, AlignRight)

	p := b.page()
	p.Items = append(p.Items, i)
	b.y = top + r.height
}

func (b *builder) summary(t quote.Totals, taxRate float64) {
	b.y += 10
	b.reserve(summaryHeight)
	top := b.y
	b.add(Rect{X: Margin, Y: top, W: TableWidth, H: summaryHeight, Fill: &colorSummaryFill, Stroke: &colorAccent})
	b.text(Margin+4, top+9, "Investment Summary", fontHeading, colorInk, AlignLeft)

	label := PageWidth - Margin - 70
	value := PageWidth - Margin - 4
	b.text(label, top+9, "Subtotal", fontBody, colorText, AlignLeft)
	b.text(value, top+9, format.PlainCurrency(t.Subtotal), fontBody, colorText, AlignRight)
	b.text(label, top+18, "GST ("+strconv.FormatFloat(quote.Finite(taxRate), 'f', -1, 64)+"%)", fontBody, colorText, AlignLeft)
	b.text(value, top+18, format.PlainCurrency(t.Tax), fontBody, colorText, AlignRight)
	b.add(Line{X1: label, Y1: top + 22, X2: value, Y2: top + 22, Color: colorAccent})
	b.text(label, top+30, "Grand Total", fontTotal, colorInk, AlignLeft)
	b.text(value, top+30, format.PlainCurrency(t.GrandTotal), fontTotal, colorInk, AlignRight)
	b.y = top + summaryHeight + 8
}

func (b *builder) amountInWords(grandTotal float64) {
	textX := Margin + 40
	lines := Wrap(b.measure, fontBody, format.AmountInWords(grandTotal), PageWidth-Margin-4-textX)
	h := max(wordsMinHeight, 7+float64(len(lines))*4.5+4)

	b.reserve(h)
	top := b.y
	b.add(Rect{X: Margin, Y: top, W: TableWidth, H: h, Stroke: &colorRule})
	b.text(Margin+4, top+11, "Amount in words", fontBold, colorInk, AlignLeft)
	for i, l := range lines {
		b.text(textX, top+11+float64(i)*4.5, l, fontBody, colorText, AlignLeft)
	}
	b.y = top + h + 8
}

func (b *builder) notes(notes string) {
	blocks := append([]string(nil), b.letterhead.Disclaimers...)
	if n := strings.TrimSpace(notes); n != "" {
		blocks = append([]string{n}, blocks...)
	}
	if len(blocks) == 0 {
		return
	}

	var lines []string
	for _, blk := range blocks {
		lines = append(lines, Wrap(b.measure, fontSmall, blk, TableWidth)...)
	}
	// Notes longer than a page continue line by line on the next one.
	h := 6 + 4*float64(len(lines))
	b.reserve(min(h, b.limit()-Margin))
	b.text(Margin, b.y, "Notes & Terms", fontHeading, colorInk, AlignLeft)
	b.y += 6
	for _, l := range lines {
		if b.y > b.limit() {
			b.newPage()
		}
		b.text(Margin, b.y, l, fontSmall, colorText, AlignLeft)
		b.y += 4
	}
	b.y += 4
}

func (b *builder) footer() {
	b.reserve(footerHeight)
	lh := b.letterhead
	by := lh.PreparedBy
	if by == "" {
		by = lh.Name
	}
	line := "Prepared by " + by
	if contact := lh.contactLine(); contact != "" {
		line += "  |  " + contact
	}
	b.add(Line{X1: Margin, Y1: b.y, X2: PageWidth - Margin, Y2: b.y, Color: colorRule})
	b.text(Margin, b.y+6, line, fontFooter, colorText, AlignLeft)
	b.y += footerHeight
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
