// Package palette normalizes author-chosen label colors so they stay
// legible on the dark canvas without drifting from the authored hue.
package palette

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// DefaultAccent replaces malformed and near-black colors.
const DefaultAccent = "#00FF00"

const (
	minLuminance   = 0.15
	targetScale    = 0.4
	zeroLumFactor  = 3.0
	nearBlackLimit = 10
)

// Normalize validates a "#RRGGBB" string and lifts dark colors to a
// readable brightness. Legible colors are returned unchanged.
func Normalize(s string) string {
	rgb, ok := parse(s)
	if !ok {
		return DefaultAccent
	}
	r, g, b := float64(rgb[0]), float64(rgb[1]), float64(rgb[2])
	if rgb[0] < nearBlackLimit && rgb[1] < nearBlackLimit && rgb[2] < nearBlackLimit {
		return DefaultAccent
	}
	lum := Luminance(rgb)
	if lum >= minLuminance {
		return s
	}
	factor := zeroLumFactor
	if lum > 0 {
		factor = targetScale / lum
	}
	return fmt.Sprintf("#%02x%02x%02x", scale(r, factor), scale(g, factor), scale(b, factor))
}

// FromBytes3 converts a packed on-chain color into the "#rrggbb" form
// Normalize expects.
func FromBytes3(c [3]byte) string {
	return "#" + hex.EncodeToString(c[:])
}

// Luminance is the perceptual brightness of rgb in [0,1].
func Luminance(rgb [3]byte) float64 {
	return (0.299*float64(rgb[0]) + 0.587*float64(rgb[1]) + 0.114*float64(rgb[2])) / 255
}

// RGBA decodes a "#RRGGBB" string, falling back to DefaultAccent.
func RGBA(s string) color.NRGBA {
	rgb, ok := parse(s)
	if !ok {
		rgb, _ = parse(DefaultAccent)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
}

// Bytes3 decodes a "#rrggbb" string into its packed on-chain form.
func Bytes3(s string) ([3]byte, bool) {
	return parse(s)
}

func parse(s string) ([3]byte, bool) {
	var out [3]byte
	if len(s) != 7 || !strings.HasPrefix(s, "#") {
		return out, false
	}
	if _, err := hex.Decode(out[:], []byte(s[1:])); err != nil {
		return out, false
	}
	return out, true
}

func scale(v, factor float64) uint8 {
	return uint8(math.Min(255, math.Round(v*factor)))
}
