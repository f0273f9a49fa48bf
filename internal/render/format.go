package render

import "fmt"

// Format is an output encoding.
type Format int

const (
	FormatSVG Format = iota
	FormatPNG
)

// ParseFormat accepts "svg" or "png"; the empty string means svg.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "", "svg":
		return FormatSVG, true
	case "png":
		return FormatPNG, true
	default:
		return FormatSVG, false
	}
}

func (f Format) String() string {
	if f == FormatPNG {
		return "png"
	}
	return "svg"
}

// ContentType is the MIME type of documents in format f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Encode serializes s in format f.
func Encode(s Scene, f Format) ([]byte, error) {
	switch f {
	case FormatSVG:
		return EncodeSVG(s), nil
	case FormatPNG:
		return EncodePNG(s)
	default:
		return nil, fmt.Errorf("render: unknown format %d", f)
	}
}
