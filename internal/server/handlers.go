package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/ironsheep/label-render-mcp/internal/imaging"
	"github.com/ironsheep/label-render-mcp/internal/labeldata"
	"github.com/ironsheep/label-render-mcp/internal/ocr"
	"github.com/ironsheep/label-render-mcp/internal/render"
	"github.com/ironsheep/label-render-mcp/internal/textfit"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "label_render").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Info("tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	switch name {
	// Inputs
	case "label_image_info":
		return s.handleImageInfo(args)
	case "label_template_regions":
		return s.handleTemplateRegions(args)

	// Fitting
	case "label_classify_script":
		return s.handleClassifyScript(args)
	case "label_font_candidates":
		return s.handleFontCandidates(args)
	case "label_fit_text":
		return s.handleFitText(args)

	// Rendering
	case "label_render":
		return s.handleRender(args)
	case "label_preview":
		return s.handlePreview(args)

	// Quality checks
	case "label_diff":
		return s.handleDiff(args)
	case "label_verify":
		return s.handleVerify(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Document helpers ===

// loadTemplate reads the template document at docPath (or the configured
// one) and picks name, else the entry matching imagePath, else the first.
func (s *Server) loadTemplate(docPath, name, imagePath string) (labeldata.Template, error) {
	if docPath == "" {
		docPath = s.cfg.Templates
	}
	templates, err := labeldata.LoadTemplates(docPath)
	if err != nil {
		return labeldata.Template{}, err
	}
	if name != "" {
		return labeldata.SelectTemplate(templates, name)
	}
	if imagePath != "" {
		if tpl, err := labeldata.SelectTemplate(templates, filepath.Base(imagePath)); err == nil {
			return tpl, nil
		}
	}
	return labeldata.SelectTemplate(templates, "")
}

// loadRules reads the rule document at path (or the configured one), or
// returns the demo rules when neither is set.
func (s *Server) loadRules(path string) (labeldata.RuleSet, error) {
	if path == "" {
		path = s.cfg.Rules
	}
	if path == "" {
		return labeldata.DemoRules(), nil
	}
	return labeldata.LoadRuleSet(path)
}

// resolveMaster returns imagePath, or the file of the named sample.
func resolveMaster(imagePath, sample string) (string, error) {
	if sample == "" {
		if imagePath == "" {
			return "", fmt.Errorf("%w: image_path or sample is required", render.ErrSourceNotFound)
		}
		return imagePath, nil
	}
	file, ok := labeldata.SampleImages[sample]
	if !ok {
		return "", fmt.Errorf("%w: unknown sample %q", render.ErrSourceNotFound, sample)
	}
	if _, err := os.Stat(file); err != nil {
		return "", fmt.Errorf("%w: sample %q: %w", render.ErrSourceNotFound, sample, err)
	}
	return file, nil
}

// === Input Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

type templateRegionsArgs struct {
	Templates string `json:"templates"`
	Template  string `json:"template"`
	ImagePath string `json:"image_path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type templateRegionsResult struct {
	Template string             `json:"template"`
	Image    string             `json:"image"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Regions  []render.Placement `json:"regions"`
}

func (s *Server) handleTemplateRegions(args json.RawMessage) (interface{}, error) {
	var a templateRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	size := image.Pt(a.Width, a.Height)
	if a.ImagePath != "" {
		img, err := s.cache.Load(a.ImagePath)
		if err != nil {
			return nil, err
		}
		size = img.Bounds().Size()
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("image_path or positive width and height are required")
	}
	tpl, err := s.loadTemplate(a.Templates, a.Template, a.ImagePath)
	if err != nil {
		return nil, err
	}
	return &templateRegionsResult{
		Template: tpl.Name(),
		Image:    tpl.Image,
		Width:    size.X,
		Height:   size.Y,
		Regions:  render.Layout(tpl, size),
	}, nil
}

// === Fitting Handlers ===

type textArgs struct {
	Text string `json:"text"`
}

type classifyResult struct {
	Script     textfit.Script `json:"script"`
	Scripts    []string       `json:"scripts"`
	Normalized string         `json:"normalized"`
}

func (s *Server) handleClassifyScript(args json.RawMessage) (interface{}, error) {
	var a textArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	text := textfit.Normalize(a.Text)
	return &classifyResult{
		Script:     textfit.Classify(text),
		Scripts:    textfit.ScriptsIn(text),
		Normalized: text,
	}, nil
}

type fontCandidatesArgs struct {
	Script   string `json:"script"`
	Platform string `json:"platform"`
	Text     string `json:"text"`
}

type candidateStatus struct {
	textfit.Candidate
	Available bool   `json:"available"`
	Name      string `json:"name,omitempty"`
	Origin    string `json:"origin,omitempty"`
	Path      string `json:"path,omitempty"`
	Error     string `json:"error,omitempty"`

	// Set only when the request carries a text.
	Supports       *bool    `json:"supports,omitempty"`
	MissingScripts []string `json:"missing_scripts,omitempty"`
}

type fontCandidatesResult struct {
	Script     textfit.Script    `json:"script"`
	Platform   textfit.Platform  `json:"platform"`
	Candidates []candidateStatus `json:"candidates"`
	Available  int               `json:"available"`
}

func (s *Server) handleFontCandidates(args json.RawMessage) (interface{}, error) {
	var a fontCandidatesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	platform := textfit.Platform(a.Platform)
	if platform == "" {
		platform = s.cfg.FitOptions().Platform
	}
	// Fonts installed since the last lookup should show up here.
	s.loader.Reset()

	res := &fontCandidatesResult{Script: textfit.Script(a.Script), Platform: platform}
	for _, c := range textfit.Candidates(textfit.Script(a.Script), platform) {
		st := candidateStatus{Candidate: c}
		src, err := s.loader.Source(c.Ref)
		if err != nil {
			st.Error = err.Error()
		} else {
			st.Available = true
			st.Name, st.Origin, st.Path = src.Name, src.Origin, src.Path
			res.Available++
			if a.Text != "" {
				ok := textfit.SupportsText(src, a.Text)
				st.Supports = &ok
				st.MissingScripts = textfit.MissingScripts(src, a.Text)
			}
		}
		res.Candidates = append(res.Candidates, st)
	}
	return res, nil
}

type fitTextArgs struct {
	Text    string `json:"text"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	MaxSize int    `json:"max_size"`
	MinSize int    `json:"min_size"`
}

func (s *Server) handleFitText(args json.RawMessage) (interface{}, error) {
	var a fitTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("width and height must be positive")
	}
	opts := s.cfg.FitOptions()
	if a.MaxSize > 0 {
		opts.MaxSize = a.MaxSize
	}
	if a.MinSize > 0 {
		opts.MinSize = a.MinSize
	}
	fitted := textfit.NewFitter(s.loader, opts).Fit(a.Text, a.Width, a.Height)
	fitted.Face.Close()
	return &fitted, nil
}

// === Rendering Handlers ===

type renderArgs struct {
	ImagePath    string `json:"image_path"`
	Sample       string `json:"sample"`
	Templates    string `json:"templates"`
	Template     string `json:"template"`
	Rules        string `json:"rules"`
	Jurisdiction string `json:"jurisdiction"`
	OutputPath   string `json:"output_path"`
	Debug        bool   `json:"debug"`
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}
	rules, err := s.loadRules(a.Rules)
	if err != nil {
		return nil, err
	}
	master, err := resolveMaster(a.ImagePath, a.Sample)
	if err != nil {
		return nil, err
	}
	tpl, err := s.loadTemplate(a.Templates, a.Template, master)
	if err != nil {
		return nil, err
	}

	r := s.renderer.WithOptions(s.cfg.RenderOptions(a.Debug))
	return r.RenderFile(s.cache, master, tpl, a.Jurisdiction, rules, a.OutputPath)
}

type previewArgs struct {
	Path  string `json:"path"`
	Width int    `json:"width"`
}

func (s *Server) handlePreview(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(img, a.Width)
}

// === Quality Check Handlers ===

type diffArgs struct {
	MasterPath string `json:"master_path"`
	FinalPath  string `json:"final_path"`
	Templates  string `json:"templates"`
	Template   string `json:"template"`
}

type diffResult struct {
	Template         string              `json:"template"`
	Regions          []render.RegionDiff `json:"regions"`
	ChangedOutside   render.Rect         `json:"changed_outside"`
	UnchangedOutside bool                `json:"unchanged_outside"`
}

func (s *Server) handleDiff(args json.RawMessage) (interface{}, error) {
	var a diffArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	master, err := s.cache.Load(a.MasterPath)
	if err != nil {
		return nil, err
	}
	// The final image may have been rewritten since it was last read.
	s.cache.Evict(a.FinalPath)
	final, err := s.cache.Load(a.FinalPath)
	if err != nil {
		return nil, err
	}
	tpl, err := s.loadTemplate(a.Templates, a.Template, a.MasterPath)
	if err != nil {
		return nil, err
	}

	regions, err := render.DiffRegions(master, final, tpl)
	if err != nil {
		return nil, err
	}
	size := master.Bounds().Size()
	allowed := make([]image.Rectangle, 0, len(tpl.Regions))
	for _, region := range tpl.Regions {
		allowed = append(allowed, render.ChangeBounds(render.PixelRect(region, size)))
	}
	outside, err := imaging.ChangedOutside(master, final, allowed)
	if err != nil {
		return nil, err
	}
	return &diffResult{
		Template: tpl.Name(),
		Regions:  regions,
		ChangedOutside: render.Rect{
			Left: outside.Min.X, Top: outside.Min.Y,
			Width: outside.Dx(), Height: outside.Dy(),
		},
		UnchangedOutside: outside.Empty(),
	}, nil
}

type verifyArgs struct {
	FinalPath    string `json:"final_path"`
	Templates    string `json:"templates"`
	Template     string `json:"template"`
	Rules        string `json:"rules"`
	Jurisdiction string `json:"jurisdiction"`
	Language     string `json:"language"`
}

type regionVerification struct {
	*ocr.Verification
	Label string `json:"label"`
	Error string `json:"error,omitempty"`
}

type verifyResult struct {
	OCR        ocr.Info             `json:"ocr"`
	Language   string               `json:"language"`
	Regions    []regionVerification `json:"regions"`
	MeanRecall float64              `json:"mean_recall"`
}

func (s *Server) handleVerify(args json.RawMessage) (interface{}, error) {
	var a verifyArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rules, err := s.loadRules(a.Rules)
	if err != nil {
		return nil, err
	}
	labels, ok := rules.Rules(a.Jurisdiction)
	if !ok {
		return nil, fmt.Errorf("%w: %q", render.ErrMissingRules, a.Jurisdiction)
	}
	s.cache.Evict(a.FinalPath)
	final, err := s.cache.Load(a.FinalPath)
	if err != nil {
		return nil, err
	}
	tpl, err := s.loadTemplate(a.Templates, a.Template, a.FinalPath)
	if err != nil {
		return nil, err
	}
	lang := a.Language
	if lang == "" {
		lang = s.cfg.OCRLanguage
	}

	res := &verifyResult{OCR: ocr.GetOCRInfo(), Language: lang, Regions: []regionVerification{}}
	if !res.OCR.Available {
		s.log.Warn("OCR unavailable, skipping verification", "reason", res.OCR.Error)
		return res, nil
	}

	size := final.Bounds().Size()
	var sum float64
	var scored int
	for _, region := range tpl.Regions {
		text, ok := labels[region.Label]
		if !ok || text == "" {
			continue
		}
		rect := render.ChangeBounds(render.PixelRect(region, size))
		v, err := ocr.VerifyRegion(final, rect, region.Label, textfit.Normalize(text), lang)
		rv := regionVerification{Verification: v, Label: region.Label}
		if err != nil {
			if errors.Is(err, ocr.ErrUnavailable) {
				res.OCR.Available = false
				res.OCR.Error = err.Error()
				return res, nil
			}
			rv.Error = err.Error()
		} else {
			sum += v.WordRecall
			scored++
		}
		res.Regions = append(res.Regions, rv)
	}
	if scored > 0 {
		res.MeanRecall = sum / float64(scored)
	}
	return res, nil
}
