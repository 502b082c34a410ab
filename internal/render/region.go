package render

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/ironsheep/label-render-mcp/internal/imaging"
	"github.com/ironsheep/label-render-mcp/internal/labeldata"
	"github.com/ironsheep/label-render-mcp/internal/textfit"
)

// MinInset is the smallest left inset between a region edge and its text.
const MinInset = 4

// TextColor is the color every rule text is drawn in.
var TextColor = color.NRGBA{A: 255}

// PixelRect converts r's percentages to pixels within an image of the given
// size: floor(pct/100 * dimension) per coordinate, with width and height
// clamped to at least one pixel. Out-of-range percentages give rectangles
// partly or wholly outside the image; they are not rejected.
func PixelRect(r labeldata.Region, size image.Point) image.Rectangle {
	left := pct(r.X, size.X)
	top := pct(r.Y, size.Y)
	w := max(pct(r.Width, size.X), 1)
	h := max(pct(r.Height, size.Y), 1)
	return image.Rect(left, top, left+w, top+h)
}

func pct(p float64, dim int) int {
	return int(math.Floor(p / 100 * float64(dim)))
}

// Inset returns the left padding for a region w pixels wide: two percent of
// the width, never less than MinInset.
func Inset(w int) int {
	return max(MinInset, w*2/100)
}

// Anchor returns the first-baseline origin for a text block with ink box box
// inside rect. The block starts Inset pixels from the left edge and is
// centered vertically. With clampBottom the ink is pulled up so it does not
// extend below rect; the top clamp is applied last, so when the text is
// taller than rect its top edge stays on rect's top and the overflow goes
// downwards.
func Anchor(rect image.Rectangle, box textfit.Box, clampBottom bool) image.Point {
	top, h := rect.Min.Y, rect.Dy()
	x := rect.Min.X + Inset(rect.Dx())
	y := top + floorDiv(h-box.Height(), 2) - box.MinY
	if clampBottom && y+box.MaxY > top+h {
		y = top + h - box.MaxY
	}
	if y+box.MinY < top {
		y = top - box.MinY
	}
	return image.Point{X: x, Y: y}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// RegionResult describes what happened to one template region.
type RegionResult struct {
	Label string `json:"label"`
	Rect  Rect   `json:"rect"`

	// Skipped is set when nothing was drawn; Reason says why.
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`

	Text     string         `json:"text,omitempty"`
	Font     textfit.Fitted `json:"font,omitzero"`
	Origin   image.Point    `json:"origin"`
	Scripts  []string       `json:"scripts,omitempty"`
	Degraded bool           `json:"degraded,omitempty"`
}

// Rect is a pixel rectangle in report form.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rectangle returns r as an image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func toRect(r image.Rectangle) Rect {
	return Rect{Left: r.Min.X, Top: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Skip reasons.
const (
	ReasonNoRule    = "no rule for label"
	ReasonEmptyText = "empty text"
)

// RenderRegion draws text into region on canvas. Empty text is skipped.
// The canvas is the only thing modified.
func (r *Renderer) RenderRegion(canvas *imaging.Canvas, region labeldata.Region, text string) RegionResult {
	rect := PixelRect(region, canvas.Bounds().Size())
	res := RegionResult{Label: region.Label, Rect: toRect(rect)}
	log := textfit.Logger().With("label", region.Label)

	if strings.TrimSpace(text) == "" {
		res.Skipped, res.Reason = true, ReasonEmptyText
		log.Debug("region skipped", "reason", res.Reason)
		return res
	}

	text = textfit.Normalize(text)
	fitted := r.fitter.Fit(text, rect.Dx(), rect.Dy())
	defer fitted.Face.Close()

	dot := Anchor(rect, fitted.Box, r.opts.ClampBottom)
	textfit.Draw(canvas.Dst(), fitted.Face, text, dot, TextColor)

	if r.opts.Debug {
		imaging.DrawOutline(canvas.Dst(), rect, r.opts.debugColor())
	}

	res.Text = text
	res.Font = fitted
	res.Origin = dot
	res.Scripts = textfit.ScriptsIn(text)
	res.Degraded = fitted.Degraded
	log.Info("region rendered", "font", fitted.Ref, "size", fitted.Size, "score", fitted.Score, "degraded", fitted.Degraded)
	return res
}
