package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func object(required []string, props map[string]interface{}) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var (
	templatesProp = prop("string", "Path to the template document (JSON or YAML). Defaults to the configured template document.")
	templateProp  = prop("string", "Template to use, by image base name (e.g. \"Master Label VAT.png\"). Defaults to the template matching the image, else the first.")
	rulesProp     = prop("string", "Path to the rule-set document (JSON or YAML). Defaults to the configured rules, else the built-in demo rules.")
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Inputs
		{
			Name:        "label_image_info",
			Description: "Load a master label image and return its dimensions, format and whether it has transparency.",
			InputSchema: object([]string{"path"}, map[string]interface{}{
				"path": prop("string", "Path to the image file"),
			}),
		},
		{
			Name:        "label_template_regions",
			Description: "List a template's regions with their pixel rectangles and left insets for a given image (or width and height). Flags regions that fall outside the image.",
			InputSchema: object(nil, map[string]interface{}{
				"templates":  templatesProp,
				"template":   templateProp,
				"image_path": prop("string", "Image whose dimensions resolve the percentages"),
				"width":      prop("integer", "Image width in pixels, when no image_path is given"),
				"height":     prop("integer", "Image height in pixels, when no image_path is given"),
			}),
		},

		// Fitting
		{
			Name:        "label_classify_script",
			Description: "Classify a text as devanagari, bengali or latin-default (the tag that selects font candidates) and list the Unicode scripts it contains.",
			InputSchema: object([]string{"text"}, map[string]interface{}{
				"text": prop("string", "Text to classify"),
			}),
		},
		{
			Name:        "label_font_candidates",
			Description: "List the ordered font candidates for a script tag and platform, with whether each one resolves on this host and where from.",
			InputSchema: object([]string{"script"}, map[string]interface{}{
				"script":   prop("string", "Script tag: devanagari, bengali or latin-default"),
				"platform": prop("string", "macos, windows or unix. Defaults to the host"),
				"text":     prop("string", "Optional text; when set each candidate reports whether it covers it and which scripts it lacks"),
			}),
		},
		{
			Name:        "label_fit_text",
			Description: "Choose the font and size that best fill a box with a text, exactly as rendering would. Returns font, size, measured ink box and fit score.",
			InputSchema: object([]string{"text", "width", "height"}, map[string]interface{}{
				"text":     prop("string", "Text to fit; \\n separates lines"),
				"width":    prop("integer", "Box width in pixels"),
				"height":   prop("integer", "Box height in pixels"),
				"max_size": prop("integer", "Largest size to try. Defaults to the configured maximum"),
				"min_size": prop("integer", "Smallest size to try. Defaults to the configured minimum"),
			}),
		},

		// Rendering
		{
			Name:        "label_render",
			Description: "Render a template's regions for a jurisdiction onto a master label and write the result as PNG. Returns a per-region report (font, size, score, skipped and degraded regions).",
			InputSchema: object([]string{"jurisdiction", "output_path"}, map[string]interface{}{
				"image_path":   prop("string", "Master label image"),
				"sample":       prop("string", "Name of a bundled sample master label, used instead of image_path"),
				"templates":    templatesProp,
				"template":     templateProp,
				"rules":        rulesProp,
				"jurisdiction": prop("string", "Jurisdiction whose rules fill the regions (e.g. \"Uttar Pradesh\")"),
				"output_path":  prop("string", "Where to write the rendered PNG"),
				"debug":        prop("boolean", "Outline every rendered region. Default false"),
			}),
		},
		{
			Name:        "label_preview",
			Description: "Return a base64 PNG thumbnail of an image scaled to a width (default 350 px), for comparing master and rendered labels side by side.",
			InputSchema: object([]string{"path"}, map[string]interface{}{
				"path":  prop("string", "Path to the image file"),
				"width": prop("integer", "Thumbnail width in pixels. Default 350"),
			}),
		},

		// Quality checks
		{
			Name:        "label_diff",
			Description: "Compare a master and its rendered label inside every template region and report changed pixels, plus any change outside the regions. Regions with no rule must be unchanged.",
			InputSchema: object([]string{"master_path", "final_path"}, map[string]interface{}{
				"master_path": prop("string", "Master label image"),
				"final_path":  prop("string", "Rendered label image"),
				"templates":   templatesProp,
				"template":    templateProp,
			}),
		},
		{
			Name:        "label_verify",
			Description: "Read rendered regions back with OCR and score each against its rule text (word recall). Requires Tesseract; reports unavailability instead of failing.",
			InputSchema: object([]string{"final_path", "jurisdiction"}, map[string]interface{}{
				"final_path":   prop("string", "Rendered label image"),
				"templates":    templatesProp,
				"template":     templateProp,
				"rules":        rulesProp,
				"jurisdiction": prop("string", "Jurisdiction the label was rendered for"),
				"language":     prop("string", "Tesseract languages joined with + (default from configuration, e.g. eng+hin)"),
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
