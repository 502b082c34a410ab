package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
)

// DiffThreshold is the per-channel difference, in 8-bit units, above which a
// pixel counts as changed.
const DiffThreshold = 10

// DiffResult describes how one rectangle differs between two images.
type DiffResult struct {
	Rect            image.Rectangle `json:"rect"`
	TotalPixels     int             `json:"total_pixels"`
	PixelsDifferent int             `json:"pixels_different"`
	ChangedRatio    float64         `json:"changed_ratio"`
	MaxChannelDiff  int             `json:"max_channel_diff"`
	// ChangedBounds is the smallest rectangle holding every changed pixel,
	// in image coordinates. It is empty when nothing changed.
	ChangedBounds image.Rectangle `json:"changed_bounds"`
}

// Unchanged reports whether no pixel in the rectangle changed.
func (d *DiffResult) Unchanged() bool { return d.PixelsDifferent == 0 }

// RegionDiff compares r in a and b. The images must have equal bounds and r
// is clipped to them.
func RegionDiff(a, b image.Image, r image.Rectangle) (*DiffResult, error) {
	if a.Bounds().Size() != b.Bounds().Size() {
		return nil, fmt.Errorf("image sizes differ: %v vs %v", a.Bounds().Size(), b.Bounds().Size())
	}
	r = r.Intersect(image.Rectangle{Max: a.Bounds().Size()})
	res := &DiffResult{Rect: r}
	if r.Empty() {
		return res, nil
	}

	// Crop re-bases both excerpts at the origin.
	ca := imaging.Crop(a, r.Add(a.Bounds().Min))
	cb := imaging.Crop(b, r.Add(b.Bounds().Min))
	d := blend.Difference(ca, cb)

	res.TotalPixels = r.Dx() * r.Dy()
	db := d.Bounds()
	for y := db.Min.Y; y < db.Max.Y; y++ {
		for x := db.Min.X; x < db.Max.X; x++ {
			i := d.PixOffset(x, y)
			m := max(d.Pix[i], d.Pix[i+1], d.Pix[i+2])
			res.MaxChannelDiff = max(res.MaxChannelDiff, int(m))
			if m <= DiffThreshold {
				continue
			}
			res.PixelsDifferent++
			p := image.Rect(x, y, x+1, y+1).Add(r.Min)
			res.ChangedBounds = res.ChangedBounds.Union(p)
		}
	}
	res.ChangedRatio = math.Round(float64(res.PixelsDifferent)/float64(res.TotalPixels)*1000) / 1000
	return res, nil
}

// ChangedOutside reports the bounding box of pixels that differ between a
// and b outside every rectangle in allowed. An empty result means the
// images agree everywhere except, possibly, inside allowed.
func ChangedOutside(a, b image.Image, allowed []image.Rectangle) (image.Rectangle, error) {
	full, err := RegionDiff(a, b, image.Rectangle{Max: a.Bounds().Size()})
	if err != nil {
		return image.Rectangle{}, err
	}
	if full.Unchanged() {
		return image.Rectangle{}, nil
	}

	var out image.Rectangle
	cb := full.ChangedBounds
	for y := cb.Min.Y; y < cb.Max.Y; y++ {
		for x := cb.Min.X; x < cb.Max.X; x++ {
			p := image.Point{X: x, Y: y}
			if inAny(p, allowed) || !pixelDiffers(a, b, p) {
				continue
			}
			out = out.Union(image.Rectangle{Min: p, Max: p.Add(image.Point{X: 1, Y: 1})})
		}
	}
	return out, nil
}

func inAny(p image.Point, rs []image.Rectangle) bool {
	for _, r := range rs {
		if p.In(r) {
			return true
		}
	}
	return false
}

func pixelDiffers(a, b image.Image, p image.Point) bool {
	ar, ag, ab, _ := a.At(p.X+a.Bounds().Min.X, p.Y+a.Bounds().Min.Y).RGBA()
	br, bg, bb, _ := b.At(p.X+b.Bounds().Min.X, p.Y+b.Bounds().Min.Y).RGBA()
	return absDiff(ar>>8, br>>8) > DiffThreshold ||
		absDiff(ag>>8, bg>>8) > DiffThreshold ||
		absDiff(ab>>8, bb>>8) > DiffThreshold
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
