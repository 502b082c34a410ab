package labeldata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrTemplateNotFound is returned when no template matches a requested name.
var ErrTemplateNotFound = errors.New("labeldata: template not found")

// Region is a named rectangle of a label, in percent of the image size.
// Values are normally within [0,100]; values outside produce rectangles
// partly or wholly off the image, which renderers tolerate.
type Region struct {
	Label  string  `json:"label" yaml:"label"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Template describes the regions of one master label image.
type Template struct {
	// Image is the reference name of the master image the regions were
	// drawn against.
	Image   string   `json:"image" yaml:"image"`
	Regions []Region `json:"regions" yaml:"regions"`
}

// Name returns the base name of the template's image reference, the key
// templates are selected by. Both slash styles are accepted.
func (t Template) Name() string {
	if t.Image == "" {
		return "unnamed"
	}
	return path.Base(strings.ReplaceAll(t.Image, `\`, "/"))
}

// Labels returns the region labels in template order.
func (t Template) Labels() []string {
	out := make([]string, len(t.Regions))
	for i, r := range t.Regions {
		out[i] = r.Label
	}
	return out
}

// LoadTemplates reads a template document from a file.
func LoadTemplates(path string) ([]Template, error) {
	// #nosec G304 -- template path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	return ParseTemplates(data, path)
}

// ParseTemplates decodes a template document. The document is either a list
// of templates or a single template object, in JSON or YAML. source is used
// in error messages only.
func ParseTemplates(data []byte, source string) ([]Template, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("labeldata: template document %s is empty", source)
	}

	var list []Template
	if err := json.Unmarshal(data, &list); err == nil {
		return validateTemplates(list, source)
	}
	var single Template
	if err := json.Unmarshal(data, &single); err == nil {
		return validateTemplates([]Template{single}, source)
	}
	if err := yaml.Unmarshal(data, &list); err == nil {
		return validateTemplates(list, source)
	}
	if err := yaml.Unmarshal(data, &single); err == nil {
		return validateTemplates([]Template{single}, source)
	}
	return nil, fmt.Errorf("labeldata: parse %s: invalid JSON or YAML template document", source)
}

func validateTemplates(list []Template, source string) ([]Template, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("labeldata: template document %s has no templates", source)
	}
	for i, t := range list {
		if strings.TrimSpace(t.Image) == "" && len(t.Regions) == 0 {
			return nil, fmt.Errorf("labeldata: %s: template %d has neither image nor regions", source, i)
		}
		for j, r := range t.Regions {
			if r.Label == "" {
				return nil, fmt.Errorf("labeldata: %s: template %d region %d has no label", source, i, j)
			}
		}
	}
	return list, nil
}

// TemplateNames returns the selection name of every template, in order.
func TemplateNames(templates []Template) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = t.Name()
	}
	return out
}

// SelectTemplate returns the first template whose Name matches name. An
// empty name selects the first template. The name may be given with or
// without directories.
func SelectTemplate(templates []Template, name string) (Template, error) {
	if len(templates) == 0 {
		return Template{}, fmt.Errorf("%w: no templates loaded", ErrTemplateNotFound)
	}
	if name == "" {
		return templates[0], nil
	}
	want := Template{Image: name}.Name()
	for _, t := range templates {
		if t.Name() == want {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q (have %s)", ErrTemplateNotFound, name, strings.Join(TemplateNames(templates), ", "))
}
