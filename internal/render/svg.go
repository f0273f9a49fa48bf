package render

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

// EncodeSVG serializes s as a standalone SVG document.
func EncodeSVG(s Scene) []byte {
	var b bytes.Buffer
	w, h := strconv.Itoa(s.Width), strconv.Itoa(s.Height)
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + w + `" height="` + h +
		`" viewBox="0 0 ` + w + ` ` + h + `">` + "\n")
	b.WriteString("<style>text{font-family:" + FontFamily + ";white-space:pre}</style>\n")
	b.WriteString(`<rect width="100%" height="100%" fill="` + s.Background + `"/>` + "\n")

	for _, it := range s.Items {
		switch v := it.(type) {
		case *Rect:
			writeRect(&b, v)
		case *Text:
			writeText(&b, v)
		}
		b.WriteByte('\n')
	}
	b.WriteString("</svg>")
	return b.Bytes()
}

func writeRect(b *bytes.Buffer, r *Rect) {
	b.WriteString(`<rect x="` + num(r.X) + `" y="` + num(r.Y) + `" width="` + num(r.W) + `" height="` + num(r.H) + `"`)
	fill := r.Fill
	if fill == "" {
		fill = "none"
	}
	attr(b, "fill", fill)
	if r.Stroke != "" && r.StrokeWidth > 0 {
		attr(b, "stroke", r.Stroke)
		attr(b, "stroke-width", num(r.StrokeWidth))
	}
	if op := opacity(r.Opacity); op < 1 {
		attr(b, "opacity", num(op))
	}
	b.WriteString("/>")
}

func writeText(b *bytes.Buffer, t *Text) {
	b.WriteString(`<text x="` + num(t.X) + `" y="` + num(t.Y) + `" font-size="` + num(t.Size) + `"`)
	if t.Bold {
		attr(b, "font-weight", "bold")
	}
	if t.Italic {
		attr(b, "font-style", "italic")
	}
	switch t.Anchor {
	case AnchorMiddle:
		attr(b, "text-anchor", "middle")
	case AnchorEnd:
		attr(b, "text-anchor", "end")
	}
	if op := opacity(t.Opacity); op < 1 {
		attr(b, "opacity", num(op))
	}

	if len(t.Runs) == 1 {
		attr(b, "fill", t.Runs[0].Fill)
		b.WriteByte('>')
		escape(b, t.Runs[0].Text)
		b.WriteString("</text>")
		return
	}
	b.WriteByte('>')
	for _, r := range t.Runs {
		b.WriteString(`<tspan fill="` + r.Fill + `">`)
		escape(b, r.Text)
		b.WriteString("</tspan>")
	}
	b.WriteString("</text>")
}

func attr(b *bytes.Buffer, name, value string) {
	b.WriteString(" " + name + `="` + value + `"`)
}

func escape(b *bytes.Buffer, s string) {
	// bytes.Buffer writes never fail.
	_ = xml.EscapeText(b, []byte(s))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
