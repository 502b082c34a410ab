package render

import (
	"image"

	"github.com/ironsheep/label-render-mcp/internal/imaging"
	"github.com/ironsheep/label-render-mcp/internal/labeldata"
)

// RegionDiff pairs a template region with its master-versus-final diff.
type RegionDiff struct {
	Label string              `json:"label"`
	Diff  *imaging.DiffResult `json:"diff"`
}

// Placement is a template region resolved to pixels.
type Placement struct {
	Label  string `json:"label"`
	Rect   Rect   `json:"rect"`
	Inset  int    `json:"inset"`
	Inside bool   `json:"inside"`
}

// Layout resolves every region of tpl against an image of the given size.
// Inside reports whether the rectangle lies entirely within the image.
func Layout(tpl labeldata.Template, size image.Point) []Placement {
	bounds := image.Rectangle{Max: size}
	out := make([]Placement, 0, len(tpl.Regions))
	for _, region := range tpl.Regions {
		r := PixelRect(region, size)
		out = append(out, Placement{
			Label:  region.Label,
			Rect:   toRect(r),
			Inset:  Inset(r.Dx()),
			Inside: r.In(bounds),
		})
	}
	return out
}

// DiffRegions compares master and final inside every region of tpl. A
// region whose label had no rule must come back unchanged.
func DiffRegions(master, final image.Image, tpl labeldata.Template) ([]RegionDiff, error) {
	size := master.Bounds().Size()
	out := make([]RegionDiff, 0, len(tpl.Regions))
	for _, region := range tpl.Regions {
		d, err := imaging.RegionDiff(master, final, PixelRect(region, size))
		if err != nil {
			return nil, err
		}
		out = append(out, RegionDiff{Label: region.Label, Diff: d})
	}
	return out, nil
}

// ChangeBounds returns the area rendering a region may touch: the region
// itself, the left inset that can push text past its right edge, and the
// inclusive debug outline.
func ChangeBounds(rect image.Rectangle) image.Rectangle {
	return image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X+Inset(rect.Dx())+1, rect.Max.Y+1)
}
