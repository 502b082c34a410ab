package textfit

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrFontUnavailable is returned when no strategy can resolve a reference.
var ErrFontUnavailable = errors.New("textfit: font unavailable")

// errNotApplicable marks a strategy that does not handle a kind of reference.
var errNotApplicable = errors.New("not applicable")

// Source is a parsed font file. It is read-only after creation and may be
// shared between goroutines; faces are created from it per call.
type Source struct {
	// Ref is the candidate reference that resolved to this source.
	Ref string
	// Name is the font family name from the name table, if any.
	Name string
	// Origin is the name of the strategy that resolved Ref.
	Origin string
	// Path is the file the font was read from; empty for embedded fonts.
	Path string

	font *opentype.Font
}

// Face creates a face at size pixels.
func (s *Source) Face(size int) (font.Face, error) {
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %s at %dpx: %w", s.Ref, size, err)
	}
	return face, nil
}

// Covers reports whether the font maps r to a real glyph. Unmapped runes
// resolve to glyph 0 (.notdef).
func (s *Source) Covers(r rune) bool {
	var buf sfnt.Buffer
	idx, err := s.font.GlyphIndex(&buf, r)
	return err == nil && idx != 0
}

func newSource(ref, origin, path string, data []byte) (*Source, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", ref, err)
	}
	name, _ := f.Name(nil, sfnt.NameIDFamily)
	return &Source{Ref: ref, Name: name, Origin: origin, Path: path, font: f}, nil
}

// Resolution is the outcome of one strategy for one reference. Exactly one
// of Source and Err is set.
type Resolution struct {
	Source *Source
	Err    error
}

func failed(err error) Resolution { return Resolution{Err: err} }

// Strategy resolves a font reference in one particular way.
type Strategy interface {
	Name() string
	Resolve(ref string) Resolution
}

// BundleStrategy resolves "bundle:<key>" references. Keys of embedded fonts
// are served from memory; any other key names a file inside Dir.
type BundleStrategy struct {
	Dir string
}

func (BundleStrategy) Name() string { return "bundle" }

func (b BundleStrategy) Resolve(ref string) Resolution {
	key, ok := strings.CutPrefix(ref, BundlePrefix)
	if !ok {
		return failed(errNotApplicable)
	}
	if data, ok := embeddedFonts[key]; ok {
		src, err := newSource(ref, b.Name(), "", data)
		if err != nil {
			return failed(err)
		}
		return Resolution{Source: src}
	}
	if b.Dir == "" {
		return failed(fmt.Errorf("bundle key %q: no bundle directory configured", key))
	}
	path := filepath.Join(b.Dir, filepath.Base(key))
	// #nosec G304 -- path is confined to the bundle directory
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(fmt.Errorf("bundle key %q: %w", key, err))
	}
	src, err := newSource(ref, b.Name(), path, data)
	if err != nil {
		return failed(err)
	}
	return Resolution{Source: src}
}

// PathStrategy resolves references that name an existing file, absolute or
// relative to the working directory.
type PathStrategy struct{}

func (PathStrategy) Name() string { return "path" }

func (p PathStrategy) Resolve(ref string) Resolution {
	if strings.HasPrefix(ref, BundlePrefix) {
		return failed(errNotApplicable)
	}
	info, err := os.Stat(ref)
	if err != nil {
		return failed(err)
	}
	if info.IsDir() {
		return failed(fmt.Errorf("%s is a directory", ref))
	}
	// #nosec G304 -- font paths come from the candidate tables
	data, err := os.ReadFile(ref)
	if err != nil {
		return failed(err)
	}
	src, err := newSource(ref, p.Name(), ref, data)
	if err != nil {
		return failed(err)
	}
	return Resolution{Source: src}
}

// SystemStrategy resolves a bare font file name ("Mangal.ttf") against the
// host's font directories.
type SystemStrategy struct {
	// Find locates a font file by name. Defaults to findfont.Find.
	Find func(name string) (string, error)
}

func (SystemStrategy) Name() string { return "system" }

func (s SystemStrategy) Resolve(ref string) Resolution {
	if strings.HasPrefix(ref, BundlePrefix) {
		return failed(errNotApplicable)
	}
	find := s.Find
	if find == nil {
		find = findfont.Find
	}
	path, err := find(filepath.Base(ref))
	if err != nil {
		return failed(err)
	}
	// #nosec G304 -- path returned by the host font lookup
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(err)
	}
	src, err := newSource(ref, s.Name(), path, data)
	if err != nil {
		return failed(err)
	}
	return Resolution{Source: src}
}

// DefaultStrategies returns the standard resolution order: the bundle rooted
// at bundleDir, then filesystem paths, then host font names.
func DefaultStrategies(bundleDir string) []Strategy {
	return []Strategy{
		BundleStrategy{Dir: bundleDir},
		PathStrategy{},
		SystemStrategy{},
	}
}

// MissTTL is how long a failed resolution is remembered. Fonts installed or
// dropped into the bundle directory later are found once it expires.
const MissTTL = time.Minute

// Loader resolves candidate references to parsed fonts and creates faces.
//
// Successful resolutions are cached for the life of the loader; failures
// for MissTTL, or until Reset. Loader is safe for concurrent use.
type Loader struct {
	strategies []Strategy
	now        func() time.Time

	mu      sync.RWMutex
	sources map[string]*Source
	misses  map[string]miss
}

type miss struct {
	err error
	at  time.Time
}

// NewLoader creates a loader that tries strategies in order.
func NewLoader(strategies ...Strategy) *Loader {
	return &Loader{
		strategies: strategies,
		now:        time.Now,
		sources:    make(map[string]*Source),
		misses:     make(map[string]miss),
	}
}

// Reset forgets remembered failures so the next lookup of every missing
// reference consults the strategies again.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.misses = make(map[string]miss)
	l.mu.Unlock()
}

// Source resolves ref with the first strategy that succeeds. Strategy
// failures are logged at debug level and never returned individually; when
// every strategy fails the error wraps ErrFontUnavailable.
func (l *Loader) Source(ref string) (*Source, error) {
	l.mu.RLock()
	if src, ok := l.sources[ref]; ok {
		l.mu.RUnlock()
		return src, nil
	}
	if m, ok := l.misses[ref]; ok && l.now().Sub(m.at) < MissTTL {
		l.mu.RUnlock()
		return nil, m.err
	}
	l.mu.RUnlock()

	var reasons []string
	for _, s := range l.strategies {
		res := s.Resolve(ref)
		if res.Err == nil && res.Source != nil {
			l.mu.Lock()
			l.sources[ref] = res.Source
			delete(l.misses, ref)
			l.mu.Unlock()
			return res.Source, nil
		}
		if errors.Is(res.Err, errNotApplicable) {
			continue
		}
		Logger().Debug("font strategy failed", "ref", ref, "strategy", s.Name(), "err", res.Err)
		reasons = append(reasons, s.Name()+": "+errString(res.Err))
	}

	err := fmt.Errorf("%w: %s (%s)", ErrFontUnavailable, ref, strings.Join(reasons, "; "))
	l.mu.Lock()
	l.misses[ref] = miss{err: err, at: l.now()}
	l.mu.Unlock()
	return nil, err
}

// Face resolves ref and creates a face at size pixels.
func (l *Loader) Face(ref string, size int) (font.Face, *Source, error) {
	src, err := l.Source(ref)
	if err != nil {
		return nil, nil, err
	}
	face, err := src.Face(size)
	if err != nil {
		return nil, nil, err
	}
	return face, src, nil
}

func errString(err error) string {
	if err == nil {
		return "no source"
	}
	return err.Error()
}
