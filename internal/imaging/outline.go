package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultOutlineColor is the debug outline color.
var DefaultOutlineColor = color.NRGBA{R: 255, A: 255}

// DrawOutline paints a one pixel rectangle outline on dst. Unlike the rest
// of this package both edges are inclusive: the outline of r covers columns
// r.Min.X and r.Max.X and rows r.Min.Y and r.Max.Y. Pixels outside dst are
// skipped.
func DrawOutline(dst draw.Image, r image.Rectangle, c color.Color) {
	b := dst.Bounds()
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(b) {
			dst.Set(x, y, c)
		}
	}
	for x := r.Min.X; x <= r.Max.X; x++ {
		set(x, r.Min.Y)
		set(x, r.Max.Y)
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		set(r.Min.X, y)
		set(r.Max.X, y)
	}
}

// ParseColor parses "#RRGGBB" (or "RRGGBB", or the "#RGB" short form) into
// an opaque color. An empty string yields DefaultOutlineColor.
func ParseColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return DefaultOutlineColor, nil
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if !isHexColor(hex) {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #RGB or #RRGGBB", hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// isHexColor reports whether s is "#" followed by exactly 3 or 6 hex digits.
// colorful.Hex alone accepts trailing or missing digits.
func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
