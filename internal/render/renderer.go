package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/label-render-mcp/internal/imaging"
	"github.com/ironsheep/label-render-mcp/internal/labeldata"
	"github.com/ironsheep/label-render-mcp/internal/textfit"
)

// Options controls a Renderer.
type Options struct {
	// Debug outlines every rendered region.
	Debug bool
	// DebugColor is the outline color. Nil means imaging.DefaultOutlineColor.
	DebugColor color.Color
	// ClampBottom keeps centered text from extending below its region.
	ClampBottom bool
}

// DefaultOptions returns the standard options: no debug outlines, bottom
// clamp on.
func DefaultOptions() Options {
	return Options{DebugColor: imaging.DefaultOutlineColor, ClampBottom: true}
}

func (o Options) debugColor() color.Color {
	if o.DebugColor == nil {
		return imaging.DefaultOutlineColor
	}
	return o.DebugColor
}

// Renderer renders templates onto master images. It holds no per-render
// state and is safe for concurrent use; each render owns its own canvas.
type Renderer struct {
	fitter *textfit.Fitter
	opts   Options
}

// NewRenderer creates a renderer fitting text with fitter.
func NewRenderer(fitter *textfit.Fitter, opts Options) *Renderer {
	return &Renderer{fitter: fitter, opts: opts}
}

// Options returns the renderer's options.
func (r *Renderer) Options() Options { return r.opts }

// WithOptions returns a renderer sharing r's fitter with different options.
func (r *Renderer) WithOptions(opts Options) *Renderer {
	return &Renderer{fitter: r.fitter, opts: opts}
}

// Report summarizes one render.
type Report struct {
	Template     string         `json:"template"`
	Jurisdiction string         `json:"jurisdiction"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Debug        bool           `json:"debug"`
	Output       string         `json:"output,omitempty"`
	Regions      []RegionResult `json:"regions"`
	// Skipped lists the labels of regions that were not drawn.
	Skipped []string `json:"skipped"`
	// Degraded lists the labels drawn with the built-in face.
	Degraded []string `json:"degraded,omitempty"`
}

// Rendered returns the number of regions that were drawn.
func (rep *Report) Rendered() int { return len(rep.Regions) - len(rep.Skipped) }

// Render draws tpl's regions for jurisdiction onto a copy of master and
// returns the flattened canvas. master is not modified.
//
// # Errors
//
//   - ErrMissingRules when rules has no entry for jurisdiction.
//   - ErrSourceNotFound when master is nil or empty.
func (r *Renderer) Render(master image.Image, tpl labeldata.Template, jurisdiction string, rules labeldata.RuleSet) (*imaging.Canvas, *Report, error) {
	labels, ok := rules.Rules(jurisdiction)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrMissingRules, jurisdiction)
	}
	if master == nil || master.Bounds().Empty() {
		return nil, nil, fmt.Errorf("%w: empty image", ErrSourceNotFound)
	}

	canvas := imaging.NewCanvas(master)
	size := canvas.Bounds().Size()
	rep := &Report{
		Template:     tpl.Name(),
		Jurisdiction: jurisdiction,
		Width:        size.X,
		Height:       size.Y,
		Debug:        r.opts.Debug,
		Regions:      make([]RegionResult, 0, len(tpl.Regions)),
		Skipped:      []string{},
	}

	for _, region := range tpl.Regions {
		text, ok := labels[region.Label]
		var res RegionResult
		if ok {
			res = r.RenderRegion(canvas, region, text)
		} else {
			res = RegionResult{
				Label:   region.Label,
				Rect:    toRect(PixelRect(region, size)),
				Skipped: true,
				Reason:  ReasonNoRule,
			}
			textfit.Logger().Debug("region skipped", "label", region.Label, "reason", res.Reason)
		}
		if res.Skipped {
			rep.Skipped = append(rep.Skipped, res.Label)
		}
		if res.Degraded {
			rep.Degraded = append(rep.Degraded, res.Label)
		}
		rep.Regions = append(rep.Regions, res)
	}

	canvas.Flatten()
	return canvas, rep, nil
}

// RenderFile loads the master at masterPath through cache, renders it and
// writes the PNG to outPath. Rules are checked before the master is read.
func (r *Renderer) RenderFile(cache *imaging.ImageCache, masterPath string, tpl labeldata.Template, jurisdiction string, rules labeldata.RuleSet, outPath string) (*Report, error) {
	if _, ok := rules.Rules(jurisdiction); !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingRules, jurisdiction)
	}
	master, err := cache.Load(masterPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}

	canvas, rep, err := r.Render(master, tpl, jurisdiction, rules)
	if err != nil {
		return nil, err
	}
	if err := canvas.Save(outPath); err != nil {
		return nil, err
	}
	cache.Evict(outPath)
	rep.Output = outPath
	return rep, nil
}

// IsInputError reports whether err is one of the structural render errors.
func IsInputError(err error) bool {
	return errors.Is(err, ErrSourceNotFound) || errors.Is(err, ErrMissingRules)
}
