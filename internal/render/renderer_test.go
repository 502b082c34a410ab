package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/label-render-mcp/internal/imaging"
	"github.com/ironsheep/label-render-mcp/internal/labeldata"
	"github.com/ironsheep/label-render-mcp/internal/textfit"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
)

func newTestRenderer(debug bool) *Renderer {
	fo := textfit.DefaultOptions()
	fo.Platform = textfit.PlatformUnix
	fitter := textfit.NewFitter(textfit.NewLoader(textfit.BundleStrategy{}), fo)

	opts := DefaultOptions()
	opts.Debug = debug
	return NewRenderer(fitter, opts)
}

func newMaster(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

func exampleTemplate() labeldata.Template {
	return labeldata.Template{
		Image: "uploads/Master Label Johnny Walker.png",
		Regions: []labeldata.Region{
			{Label: "V_AGE_RESTR_EN", X: 10, Y: 80, Width: 40, Height: 8},
			{Label: "V_HEALTH_WARN_REG", X: 10, Y: 10, Width: 80, Height: 6},
			{Label: "NOT_IN_ANY_RULES", X: 60, Y: 30, Width: 30, Height: 10},
		},
	}
}

func TestRender_ExampleScenario(t *testing.T) {
	r := newTestRenderer(true)
	master := newMaster(1000, 1500)

	canvas, rep, err := r.Render(master, exampleTemplate(), "Uttar Pradesh", labeldata.DemoRules())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	age := rep.Regions[0]
	if age.Skipped || age.Label != "V_AGE_RESTR_EN" {
		t.Fatalf("unexpected first region: %+v", age)
	}
	if diff := cmp.Diff(Rect{Left: 100, Top: 1200, Width: 400, Height: 120}, age.Rect); diff != "" {
		t.Errorf("rect mismatch (-want +got):\n%s", diff)
	}
	if age.Font.Box.Width() > 400 || age.Font.Box.Height() > 120 {
		t.Errorf("fitted box %dx%d exceeds 400x120", age.Font.Box.Width(), age.Font.Box.Height())
	}

	for _, p := range []image.Point{{100, 1200}, {500, 1200}, {100, 1320}, {500, 1320}, {300, 1200}, {300, 1320}, {100, 1260}, {500, 1260}} {
		if got := canvas.At(p.X, p.Y); got != red {
			t.Errorf("outline pixel %v = %v, want red", p, got)
		}
	}
	for _, p := range []image.Point{{99, 1260}, {300, 1199}, {300, 1321}} {
		if got := canvas.At(p.X, p.Y); got != white {
			t.Errorf("pixel %v just outside outline = %v, want white", p, got)
		}
	}

	if ink := inkBounds(canvas.Image(), image.Rect(101, 1201, 500, 1320)); ink.Empty() {
		t.Fatal("no text drawn in example region")
	}

	// Ink stays inside each region, plus the left inset it may push past
	// the right edge.
	var allowed []image.Rectangle
	for _, region := range exampleTemplate().Regions {
		allowed = append(allowed, ChangeBounds(PixelRect(region, image.Pt(1000, 1500))))
	}
	outside, err := imaging.ChangedOutside(master, canvas.Image(), allowed)
	if err != nil {
		t.Fatal(err)
	}
	if !outside.Empty() {
		t.Errorf("pixels changed outside rendered regions: %v", outside)
	}
}

func TestRender_RegionSkipLeavesPixels(t *testing.T) {
	r := newTestRenderer(true)
	master := newMaster(600, 400)
	tpl := exampleTemplate()

	canvas, rep, err := r.Render(master, tpl, "Rajasthan", labeldata.DemoRules())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if diff := cmp.Diff([]string{"NOT_IN_ANY_RULES"}, rep.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	if rep.Rendered() != 2 {
		t.Errorf("Rendered() = %d, want 2", rep.Rendered())
	}

	diffs, err := DiffRegions(master, canvas.Image(), tpl)
	if err != nil {
		t.Fatalf("DiffRegions failed: %v", err)
	}
	if !diffs[2].Diff.Unchanged() {
		t.Errorf("skipped region changed: %+v", diffs[2].Diff)
	}
	if diffs[0].Diff.Unchanged() {
		t.Error("rendered region reported unchanged")
	}
}

func TestRender_EmptyTextSkipped(t *testing.T) {
	r := newTestRenderer(true)
	master := newMaster(200, 100)
	rules := labeldata.RuleSet{"Goa": {"A": "  "}}
	tpl := labeldata.Template{Regions: []labeldata.Region{{Label: "A", X: 10, Y: 10, Width: 50, Height: 50}}}

	canvas, rep, err := r.Render(master, tpl, "Goa", rules)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !rep.Regions[0].Skipped || rep.Regions[0].Reason != ReasonEmptyText {
		t.Errorf("region not skipped for empty text: %+v", rep.Regions[0])
	}
	if !bytes.Equal(canvas.Image().Pix, master.Pix) {
		t.Error("empty text changed the canvas")
	}
}

func TestRender_Idempotent(t *testing.T) {
	r := newTestRenderer(false)
	master := newMaster(800, 600)
	tpl := exampleTemplate()

	a, _, err := r.Render(master, tpl, "Uttar Pradesh", labeldata.DemoRules())
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := r.Render(master, tpl, "Uttar Pradesh", labeldata.DemoRules())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Image().Pix, b.Image().Pix) {
		t.Error("two renders of the same input differ")
	}
	if master.NRGBAAt(100, 500) != white {
		t.Error("master was modified")
	}
}

func TestRender_DegenerateRegion(t *testing.T) {
	r := newTestRenderer(true)
	tpl := labeldata.Template{Regions: []labeldata.Region{
		{Label: "Lisc_no", X: 10, Y: 10, Width: 0, Height: 0},
	}}

	_, rep, err := r.Render(newMaster(300, 300), tpl, "Uttar Pradesh", labeldata.DemoRules())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	res := rep.Regions[0]
	if res.Skipped {
		t.Fatalf("degenerate region skipped: %+v", res)
	}
	if res.Rect.Width != 1 || res.Rect.Height != 1 {
		t.Errorf("rect = %+v, want 1x1", res.Rect)
	}
	if res.Font.Size != textfit.DefaultMinSize {
		t.Errorf("size = %d, want minimum %d", res.Font.Size, textfit.DefaultMinSize)
	}
}

func TestRender_Errors(t *testing.T) {
	r := newTestRenderer(false)
	tpl := exampleTemplate()

	_, _, err := r.Render(newMaster(10, 10), tpl, "Goa", labeldata.DemoRules())
	if !errors.Is(err, ErrMissingRules) {
		t.Errorf("unknown jurisdiction: err = %v, want ErrMissingRules", err)
	}
	_, _, err = r.Render(nil, tpl, "Rajasthan", labeldata.DemoRules())
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("nil master: err = %v, want ErrSourceNotFound", err)
	}
	_, _, err = r.Render(image.NewNRGBA(image.Rectangle{}), tpl, "Rajasthan", labeldata.DemoRules())
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("empty master: err = %v, want ErrSourceNotFound", err)
	}
	if !IsInputError(err) {
		t.Error("IsInputError should hold for ErrSourceNotFound")
	}
}

func TestRender_DevanagariUsesDevanagariCandidates(t *testing.T) {
	r := newTestRenderer(false)
	tpl := labeldata.Template{Regions: []labeldata.Region{
		{Label: "V_HEALTH_WARN_REG", X: 5, Y: 5, Width: 90, Height: 20},
	}}

	_, rep, err := r.Render(newMaster(500, 300), tpl, "Uttar Pradesh", labeldata.DemoRules())
	if err != nil {
		t.Fatal(err)
	}
	res := rep.Regions[0]
	if res.Font.Script != textfit.ScriptDevanagari {
		t.Fatalf("script = %s, want devanagari", res.Font.Script)
	}
	if res.Degraded || len(rep.Degraded) != 0 {
		t.Fatalf("region degraded to %q; the bundled devanagari fonts must support it", res.Font.Ref)
	}
	switch res.Font.Ref {
	case textfit.BundlePrefix + textfit.BundleNotoDevanagari, textfit.UniversalFallback:
	default:
		t.Errorf("font = %q, want a bundled devanagari font", res.Font.Ref)
	}
	refs := make([]string, 0)
	for _, c := range textfit.Candidates(textfit.ScriptDevanagari, textfit.PlatformUnix) {
		refs = append(refs, c.Ref)
	}
	if !slices.Contains(refs, res.Font.Ref) {
		t.Errorf("font %q is not a devanagari candidate", res.Font.Ref)
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	masterPath := filepath.Join(dir, "Master Label VAT.png")
	f, err := os.Create(masterPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, newMaster(400, 300)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	r := newTestRenderer(true)
	cache := imaging.NewImageCache()
	out := filepath.Join(dir, "final.png")

	rep, err := r.RenderFile(cache, masterPath, exampleTemplate(), "Rajasthan", labeldata.DemoRules(), out)
	if err != nil {
		t.Fatalf("RenderFile failed: %v", err)
	}
	if rep.Output != out || rep.Width != 400 || rep.Height != 300 {
		t.Errorf("unexpected report header: %+v", rep)
	}
	final, err := cache.Load(out)
	if err != nil {
		t.Fatalf("output not readable: %v", err)
	}
	if final.Bounds().Size() != image.Pt(400, 300) {
		t.Errorf("output size = %v", final.Bounds().Size())
	}

	_, err = r.RenderFile(cache, filepath.Join(dir, "missing.png"), exampleTemplate(), "Rajasthan", labeldata.DemoRules(), out)
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("missing master: err = %v, want ErrSourceNotFound", err)
	}
	_, err = r.RenderFile(cache, filepath.Join(dir, "missing.png"), exampleTemplate(), "Goa", labeldata.DemoRules(), out)
	if !errors.Is(err, ErrMissingRules) {
		t.Errorf("missing rules checked first: err = %v, want ErrMissingRules", err)
	}
}

func TestLayout(t *testing.T) {
	got := Layout(exampleTemplate(), image.Pt(1000, 1500))
	want := Placement{Label: "V_AGE_RESTR_EN", Rect: Rect{Left: 100, Top: 1200, Width: 400, Height: 120}, Inset: 8, Inside: true}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("placement mismatch (-want +got):\n%s", diff)
	}
	if len(got) != 3 {
		t.Errorf("got %d placements", len(got))
	}

	edge := Layout(labeldata.Template{Regions: []labeldata.Region{{Label: "x", X: 95, Y: 0, Width: 10, Height: 5}}}, image.Pt(100, 100))
	if edge[0].Inside {
		t.Error("overhanging region reported inside")
	}
}

// inkBounds returns the bounds of non-white, non-red pixels within r.
func inkBounds(img *image.NRGBA, r image.Rectangle) image.Rectangle {
	var out image.Rectangle
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			if c == white || c == red {
				continue
			}
			out = out.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return out
}
