// Package layout turns a quotation into fixed-size pages of positioned
// drawing primitives. It knows nothing about any output format; a renderer
// walks the pages and draws each element. All coordinates are millimetres
// from the top-left corner of the page, text positions are baselines.
package layout

type Color struct {
	R, G, B int
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font names one of the core PDF faces. Style is "", "B", "I" or "BI".
type Font struct {
	Family string
	Style  string
	Size   float64 // points
}

// Element is one drawing primitive: Rect, Line, Text or Image.
type Element interface {
	element()
}

// Rect is a rectangle, filled when Fill is set and outlined when Stroke is set.
type Rect struct {
	X, Y, W, H float64
	Fill       *Color
	Stroke     *Color
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Color          Color
}

// Text is a single run anchored at X according to Align.
type Text struct {
	X, Y  float64
	Value string
	Align Align
	Font  Font
	Color Color
}

// Image places the document logo.
type Image struct {
	X, Y, W, H float64
}

func (Rect) element()  {}
func (Line) element()  {}
func (Text) element()  {}
func (Image) element() {}

// Logo is an encoded raster image ("PNG" or "JPG").
type Logo struct {
	Data   []byte
	Format string
}

type Page struct {
	Elements []Element
	// TableHeaders holds the top edge of every item table header on the page.
	TableHeaders []float64
	// Items holds the indexes of the line items drawn on the page.
	Items []int
}

type Document struct {
	Width, Height float64
	Title         string
	Filename      string
	Logo          *Logo
	Pages         []Page
}
