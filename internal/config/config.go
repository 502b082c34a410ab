// Package config loads runtime settings from an optional YAML file and
// LABEL_MCP_* environment variables. Environment values override the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/label-render-mcp/internal/imaging"
	"github.com/ironsheep/label-render-mcp/internal/ocr"
	"github.com/ironsheep/label-render-mcp/internal/render"
	"github.com/ironsheep/label-render-mcp/internal/textfit"
)

// Environment variables.
const (
	EnvConfig      = "LABEL_MCP_CONFIG"
	EnvLogLevel    = "LABEL_MCP_LOG_LEVEL"
	EnvFontDir     = "LABEL_MCP_FONT_DIR"
	EnvMaxFontSize = "LABEL_MCP_MAX_FONT_SIZE"
	EnvMinFontSize = "LABEL_MCP_MIN_FONT_SIZE"
	EnvClampBottom = "LABEL_MCP_CLAMP_BOTTOM"
	EnvDebugColor  = "LABEL_MCP_DEBUG_COLOR"
	EnvOCRLanguage = "LABEL_MCP_OCR_LANGUAGE"
	EnvTemplates   = "LABEL_MCP_TEMPLATES"
	EnvRules       = "LABEL_MCP_RULES"
	EnvPlatform    = "LABEL_MCP_PLATFORM"
)

// Config holds every runtime setting.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	FontDir     string `yaml:"font_dir"`
	MaxFontSize int    `yaml:"max_font_size"`
	MinFontSize int    `yaml:"min_font_size"`
	ClampBottom bool   `yaml:"clamp_bottom"`
	DebugColor  string `yaml:"debug_color"`
	OCRLanguage string `yaml:"ocr_language"`

	// Templates is the default template document.
	Templates string `yaml:"templates"`
	// Rules is the rule-set document. Empty means the built-in demo rules.
	Rules string `yaml:"rules"`
	// Platform overrides host detection for font fallbacks.
	Platform string `yaml:"platform"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:    "warn",
		FontDir:     DefaultFontDir(),
		MaxFontSize: textfit.DefaultMaxSize,
		MinFontSize: textfit.DefaultMinSize,
		ClampBottom: true,
		DebugColor:  "#FF0000",
		OCRLanguage: ocr.DefaultLanguage,
		Templates:   "template_clean.json",
	}
}

// DefaultFontDir is the "fonts" directory next to the executable, or
// "fonts" in the working directory when the executable cannot be located.
func DefaultFontDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "fonts"
	}
	if real, err := filepath.EvalSymlinks(exe); err == nil {
		exe = real
	}
	return filepath.Join(filepath.Dir(exe), "fonts")
}

// Load reads the process environment.
func Load() (Config, error) {
	return LoadWith(os.Getenv)
}

// LoadWith builds a Config from defaults, the YAML file named by
// LABEL_MCP_CONFIG (if any), then the environment as seen through getenv.
func LoadWith(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv(EnvConfig); path != "" {
		// #nosec G304 -- config path is chosen by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var errs []error
	setString(getenv, EnvLogLevel, &cfg.LogLevel)
	setString(getenv, EnvFontDir, &cfg.FontDir)
	setString(getenv, EnvDebugColor, &cfg.DebugColor)
	setString(getenv, EnvOCRLanguage, &cfg.OCRLanguage)
	setString(getenv, EnvTemplates, &cfg.Templates)
	setString(getenv, EnvRules, &cfg.Rules)
	setString(getenv, EnvPlatform, &cfg.Platform)
	errs = append(errs,
		setInt(getenv, EnvMaxFontSize, &cfg.MaxFontSize),
		setInt(getenv, EnvMinFontSize, &cfg.MinFontSize),
		setBool(getenv, EnvClampBottom, &cfg.ClampBottom),
	)
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(getenv func(string) string, key string, dst *int) error {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(getenv func(string) string, key string, dst *bool) error {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// Validate checks values that would otherwise fail later.
func (c Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MinFontSize < 1 {
		return fmt.Errorf("min font size must be positive, got %d", c.MinFontSize)
	}
	if c.MaxFontSize < c.MinFontSize {
		return fmt.Errorf("max font size %d below min font size %d", c.MaxFontSize, c.MinFontSize)
	}
	if _, err := imaging.ParseColor(c.DebugColor); err != nil {
		return err
	}
	switch textfit.Platform(c.Platform) {
	case "", textfit.PlatformMacOS, textfit.PlatformWindows, textfit.PlatformUnix:
	default:
		return fmt.Errorf("unknown platform %q", c.Platform)
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// FitOptions returns the font fitting options.
func (c Config) FitOptions() textfit.Options {
	opts := textfit.DefaultOptions()
	opts.MaxSize = c.MaxFontSize
	opts.MinSize = c.MinFontSize
	if c.Platform != "" {
		opts.Platform = textfit.Platform(c.Platform)
	}
	return opts
}

// RenderOptions returns the render options, with debug outlines as given.
func (c Config) RenderOptions(debug bool) render.Options {
	col, err := imaging.ParseColor(c.DebugColor)
	if err != nil {
		col = imaging.DefaultOutlineColor
	}
	return render.Options{
		Debug:       debug,
		DebugColor:  col,
		ClampBottom: c.ClampBottom,
	}
}

// NewRenderer wires a loader, fitter and renderer from c.
func (c Config) NewRenderer(debug bool) *render.Renderer {
	loader := textfit.NewLoader(textfit.DefaultStrategies(c.FontDir)...)
	fitter := textfit.NewFitter(loader, c.FitOptions())
	return render.NewRenderer(fitter, c.RenderOptions(debug))
}
