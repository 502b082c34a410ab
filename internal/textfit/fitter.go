package textfit

import (
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// DefaultFaceRef identifies the built-in bitmap face used in degraded mode.
const DefaultFaceRef = "builtin:basic7x13"

// Fitting defaults.
const (
	DefaultMaxSize    = 400
	DefaultMinSize    = 6
	DefaultGoodEnough = 0.98
)

// Options controls a Fitter.
type Options struct {
	// MaxSize and MinSize bound the size search, in pixels.
	MaxSize int
	MinSize int

	// GoodEnough stops the candidate scan once a candidate scores at least
	// this much. Zero or negative disables early exit.
	GoodEnough float64

	// Platform selects the platform fallback fonts. Empty means the host.
	Platform Platform
}

// DefaultOptions returns the standard fitting bounds for the host platform.
func DefaultOptions() Options {
	return Options{
		MaxSize:    DefaultMaxSize,
		MinSize:    DefaultMinSize,
		GoodEnough: DefaultGoodEnough,
		Platform:   HostPlatform(),
	}
}

func (o Options) normalized() Options {
	if o.MinSize < 1 {
		o.MinSize = DefaultMinSize
	}
	if o.MaxSize < o.MinSize {
		o.MaxSize = max(DefaultMaxSize, o.MinSize)
	}
	if o.Platform == "" {
		o.Platform = HostPlatform()
	}
	return o
}

// Fitted is the outcome of fitting one text into one box.
type Fitted struct {
	// Face is the face to draw with. The caller owns it.
	Face font.Face `json:"-"`

	// Ref is the candidate reference the face came from, or DefaultFaceRef.
	Ref string `json:"ref"`
	// Name is the font family name, when the font declares one.
	Name string `json:"name,omitempty"`
	// Size is the chosen size in pixels.
	Size int `json:"size"`
	// Box is the measured ink box of the text at Size.
	Box Box `json:"box"`
	// Score is min(width/boxWidth, height/boxHeight) at Size.
	Score float64 `json:"score"`
	// Script is the classification that selected the candidate list.
	Script Script `json:"script"`
	// Degraded is set when no candidate supported the text and the built-in
	// face was used; such text may overflow its box.
	Degraded bool `json:"degraded"`
	// Tried counts the candidates that were loaded and sized.
	Tried int `json:"tried"`
}

// Fitter chooses a font and size for text in a box.
type Fitter struct {
	loader *Loader
	opts   Options
}

// NewFitter creates a fitter resolving candidates through loader.
func NewFitter(loader *Loader, opts Options) *Fitter {
	return &Fitter{loader: loader, opts: opts.normalized()}
}

// Options returns the effective options.
func (f *Fitter) Options() Options { return f.opts }

// Loader returns the loader used to resolve candidates.
func (f *Fitter) Loader() *Loader { return f.loader }

// Fit finds the font and size that best fill a boxWidth x boxHeight pixel box
// with text.
//
// For every candidate of the text's script that loads and supports the text,
// the largest size in [MinSize, MaxSize] whose ink box fits on both axes is
// found by binary search (MinSize when nothing fits). The candidate with the
// highest fill score wins; ties keep the earlier candidate. The search
// relies on the ink box growing monotonically with size for a fixed font.
//
// When no candidate supports the text, the built-in bitmap face is returned
// at its native size with Degraded set. Fit never fails.
func (f *Fitter) Fit(text string, boxWidth, boxHeight int) Fitted {
	text = Normalize(text)
	boxWidth = max(boxWidth, 1)
	boxHeight = max(boxHeight, 1)

	script := Classify(text)
	log := Logger().With("script", string(script), "box_w", boxWidth, "box_h", boxHeight)

	best := Fitted{Score: -1}
	tried := 0
	for _, cand := range Candidates(script, f.opts.Platform) {
		src, err := f.loader.Source(cand.Ref)
		if err != nil {
			continue
		}
		if !SupportsText(src, text) {
			log.Debug("candidate does not support text", "ref", cand.Ref, "missing_scripts", MissingScripts(src, text))
			continue
		}
		tried++

		size := f.searchSize(src, text, boxWidth, boxHeight)
		face, err := src.Face(size)
		if err != nil {
			continue
		}
		box := Measure(face, text)
		score := math.Min(
			float64(box.Width())/float64(boxWidth),
			float64(box.Height())/float64(boxHeight),
		)
		log.Debug("candidate sized", "ref", cand.Ref, "size", size, "score", score)

		if score > best.Score {
			if best.Face != nil {
				best.Face.Close()
			}
			best = Fitted{
				Face:   face,
				Ref:    cand.Ref,
				Name:   src.Name,
				Size:   size,
				Box:    box,
				Score:  score,
				Script: script,
			}
		} else {
			face.Close()
		}
		if f.opts.GoodEnough > 0 && best.Score >= f.opts.GoodEnough {
			break
		}
	}

	if best.Face == nil {
		log.Warn("no font supports text, using built-in face")
		return defaultFit(text, boxWidth, boxHeight, script)
	}
	best.Tried = tried
	log.Info("font fitted", "ref", best.Ref, "size", best.Size, "score", best.Score)
	return best
}

// searchSize returns the largest size whose ink box fits the box, or MinSize.
// Sizes whose face cannot be created are treated as not fitting.
func (f *Fitter) searchSize(src *Source, text string, boxWidth, boxHeight int) int {
	lo, hi := f.opts.MinSize, f.opts.MaxSize
	chosen := f.opts.MinSize
	for lo <= hi {
		mid := lo + (hi-lo)/2
		face, err := src.Face(mid)
		if err != nil {
			hi = mid - 1
			continue
		}
		box := Measure(face, text)
		face.Close()
		if box.Width() <= boxWidth && box.Height() <= boxHeight {
			chosen = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return chosen
}

func defaultFit(text string, boxWidth, boxHeight int, script Script) Fitted {
	face := basicfont.Face7x13
	box := Measure(face, text)
	return Fitted{
		Face:     face,
		Ref:      DefaultFaceRef,
		Size:     face.Height,
		Box:      box,
		Score:    math.Min(float64(box.Width())/float64(boxWidth), float64(box.Height())/float64(boxHeight)),
		Script:   script,
		Degraded: true,
	}
}
