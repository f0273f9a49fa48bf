// Package render composes wrapped, colored text into finished documents.
//
// Layouts produce a Scene: a flat list of positioned text and rectangles on
// a solid background. Encoders turn a Scene into SVG markup or a PNG raster.
// Layout functions are pure; the only error a render can return comes from
// the raster backend.
package render

// Canvas colors shared by every layout.
const (
	Background    = "#1A1A1A"
	ReceiptBack   = "#0A0A0A"
	ReceiptPanel  = "#151515"
	Foreground    = "#FFFFFF"
	Muted         = "#808080"
	Soft          = "#C0C0C0"
	Rule          = "#333333"
	Accent        = "#00FF00"
	TargetBody    = "#E0E0E0"
	NeighbourBody = "#A0A0A0"
	FontFamily    = "Courier New,monospace"
)

// Anchor controls horizontal alignment of a Text relative to X.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// Run is a span of text in one color.
type Run struct {
	Text string
	Fill string
}

// Item is an element of a Scene: either *Text or *Rect.
type Item interface {
	item()
}

// Text is a single line of text with its baseline at Y.
type Text struct {
	X, Y    float64
	Size    float64
	Bold    bool
	Italic  bool
	Anchor  Anchor
	Opacity float64 // 0 means opaque
	Runs    []Run
}

// Rect is an axis-aligned rectangle. An empty Fill or Stroke is not drawn.
type Rect struct {
	X, Y, W, H  float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64 // 0 means opaque
}

func (*Text) item() {}
func (*Rect) item() {}

// Scene is a layout ready to be encoded.
type Scene struct {
	Width      int
	Height     int
	Background string
	Items      []Item
}

func (s *Scene) text(x, y, size float64, fill, body string) *Text {
	t := &Text{X: x, Y: y, Size: size, Runs: []Run{{Text: body, Fill: fill}}}
	s.Items = append(s.Items, t)
	return t
}

func (s *Scene) rect(r Rect) {
	s.Items = append(s.Items, &r)
}

// Lines returns the plain text of every Text item in drawing order.
func (s *Scene) Lines() []string {
	var out []string
	for _, it := range s.Items {
		if t, ok := it.(*Text); ok {
			out = append(out, t.Content())
		}
	}
	return out
}

// Content concatenates the runs of t.
func (t *Text) Content() string {
	n := 0
	for _, r := range t.Runs {
		n += len(r.Text)
	}
	b := make([]byte, 0, n)
	for _, r := range t.Runs {
		b = append(b, r.Text...)
	}
	return string(b)
}

func opacity(v float64) float64 {
	if v <= 0 || v > 1 {
		return 1
	}
	return v
}
