package textfit

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LineSpacing is the extra gap in pixels between explicit lines of a value.
const LineSpacing = 4

// ProbeSize is the size in pixels at which SupportsText measures a face.
const ProbeSize = 40

// Box is the ink bounding box of a text block, in pixels, relative to the
// baseline origin of its first line. Max is exclusive.
type Box struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Width returns the horizontal extent of the box.
func (b Box) Width() int { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b Box) Height() int { return b.MaxY - b.MinY }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// lineAdvance is the baseline-to-baseline distance of stacked lines.
func lineAdvance(face font.Face) int {
	return face.Metrics().Height.Ceil() + LineSpacing
}

// Measure returns the ink bounding box of text drawn with face. Explicit
// "\n" line breaks stack lines downwards; nothing is wrapped.
func Measure(face font.Face, text string) Box {
	lines := strings.Split(text, "\n")
	adv := lineAdvance(face)

	var box Box
	have := false
	for i, line := range lines {
		if line == "" {
			continue
		}
		b, _ := font.BoundString(face, line)
		lb := Box{
			MinX: b.Min.X.Floor(),
			MinY: b.Min.Y.Floor() + i*adv,
			MaxX: b.Max.X.Ceil(),
			MaxY: b.Max.Y.Ceil() + i*adv,
		}
		if lb.Empty() {
			continue
		}
		if !have {
			box = lb
			have = true
			continue
		}
		box.MinX = min(box.MinX, lb.MinX)
		box.MinY = min(box.MinY, lb.MinY)
		box.MaxX = max(box.MaxX, lb.MaxX)
		box.MaxY = max(box.MaxY, lb.MaxY)
	}
	return box
}

// Draw renders text onto dst with the first baseline at dot. Lines are
// stacked exactly as Measure lays them out.
func Draw(dst draw.Image, face font.Face, text string, dot image.Point, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}
	adv := lineAdvance(face)
	for i, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		d.Dot = fixed.P(dot.X, dot.Y+i*adv)
		d.DrawString(line)
	}
}

// SupportsText reports whether src can render text. Every letter and
// combining mark must map to a real glyph (see MissingScripts); uncovered
// punctuation and symbols are tolerated. The covered runes are then measured
// at ProbeSize and must have positive width, so blank text is rejected too.
// Line breaks are kept.
func SupportsText(src *Source, text string) bool {
	if len(MissingScripts(src, text)) > 0 {
		return false
	}
	face, err := src.Face(ProbeSize)
	if err != nil {
		return false
	}
	defer face.Close()

	covered := strings.Map(func(r rune) rune {
		if r == '\n' || src.Covers(r) {
			return r
		}
		return -1
	}, text)
	return Measure(face, covered).Width() > 0
}
