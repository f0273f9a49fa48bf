package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/starford/terminalart/internal/palette"
)

type style struct {
	bold, italic bool
}

// Go Mono stands in for Courier New: both are monospace, so character
// budgets place text identically.
var (
	monoLoading sync.Once
	monoFonts   map[style]*sfnt.Font
	monoErr     error
)

func loadMono() (map[style]*sfnt.Font, error) {
	monoLoading.Do(func() {
		sources := map[style][]byte{
			{}:                         gomono.TTF,
			{bold: true}:               gomonobold.TTF,
			{italic: true}:             gomonoitalic.TTF,
			{bold: true, italic: true}: gomonobolditalic.TTF,
		}
		monoFonts = make(map[style]*sfnt.Font, len(sources))
		for st, ttf := range sources {
			f, err := sfnt.Parse(ttf)
			if err != nil {
				monoErr = fmt.Errorf("render: parse mono font: %w", err)
				return
			}
			monoFonts[st] = f
		}
	})
	return monoFonts, monoErr
}

type faceKey struct {
	style
	size float64
}

// faceSet creates faces lazily for one encode. Faces hold glyph buffers
// and must not be shared between goroutines.
type faceSet struct {
	fonts map[style]*sfnt.Font
	faces map[faceKey]font.Face
}

func (fs *faceSet) face(t *Text) (font.Face, error) {
	key := faceKey{style: style{bold: t.Bold, italic: t.Italic}, size: t.Size}
	if f, ok := fs.faces[key]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(fs.fonts[key.style], &opentype.FaceOptions{
		Size:    t.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: face %.0fpx: %w", t.Size, err)
	}
	fs.faces[key] = f
	return f, nil
}

func (fs *faceSet) close() {
	for _, f := range fs.faces {
		_ = f.Close()
	}
}

// EncodePNG rasterizes s. Only font loading and PNG encoding can fail.
func EncodePNG(s Scene) ([]byte, error) {
	fonts, err := loadMono()
	if err != nil {
		return nil, err
	}
	fs := &faceSet{fonts: fonts, faces: make(map[faceKey]font.Face)}
	defer fs.close()

	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(palette.RGBA(s.Background)), image.Point{}, draw.Src)

	for _, it := range s.Items {
		switch v := it.(type) {
		case *Rect:
			fillRect(img, v)
		case *Text:
			if err := drawText(img, fs, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func fillRect(img draw.Image, r *Rect) {
	bounds := image.Rect(px(r.X), px(r.Y), px(r.X+r.W), px(r.Y+r.H))
	mask := image.NewUniform(color.Alpha{A: alpha(r.Opacity)})

	if r.Fill != "" {
		draw.DrawMask(img, bounds, image.NewUniform(palette.RGBA(r.Fill)), image.Point{}, mask, image.Point{}, draw.Over)
	}
	if r.Stroke == "" || r.StrokeWidth <= 0 {
		return
	}
	sw := max(1, px(r.StrokeWidth))
	src := image.NewUniform(palette.RGBA(r.Stroke))
	edges := []image.Rectangle{
		image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+sw),
		image.Rect(bounds.Min.X, bounds.Max.Y-sw, bounds.Max.X, bounds.Max.Y),
		image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+sw, bounds.Max.Y),
		image.Rect(bounds.Max.X-sw, bounds.Min.Y, bounds.Max.X, bounds.Max.Y),
	}
	for _, e := range edges {
		draw.DrawMask(img, e, src, image.Point{}, mask, image.Point{}, draw.Over)
	}
}

func drawText(img draw.Image, fs *faceSet, t *Text) error {
	face, err := fs.face(t)
	if err != nil {
		return err
	}
	d := &font.Drawer{Dst: img, Face: face}

	x := fixed.Int26_6(math.Round(t.X * 64))
	if t.Anchor != AnchorStart {
		width := d.MeasureString(t.Content())
		if t.Anchor == AnchorMiddle {
			width /= 2
		}
		x -= width
	}
	d.Dot = fixed.Point26_6{X: x, Y: fixed.Int26_6(math.Round(t.Y * 64))}

	a := alpha(t.Opacity)
	for _, r := range t.Runs {
		c := palette.RGBA(r.Fill)
		c.A = a
		d.Src = image.NewUniform(c)
		d.DrawString(r.Text)
	}
	return nil
}

func alpha(op float64) uint8 {
	return uint8(math.Round(opacity(op) * 0xff))
}

func px(v float64) int {
	return int(math.Round(v))
}
