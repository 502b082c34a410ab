package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/ironsheep/label-render-mcp/internal/config"
	"github.com/ironsheep/label-render-mcp/internal/imaging"
	"github.com/ironsheep/label-render-mcp/internal/labeldata"
	"github.com/ironsheep/label-render-mcp/internal/render"
	"github.com/ironsheep/label-render-mcp/internal/server"
	"github.com/ironsheep/label-render-mcp/internal/textfit"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const defaultOutput = "final_label.png"

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && (!strings.HasPrefix(args[0], "-") || isMetaFlag(args[0])) {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("%s %s\n", server.ServerName, Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	// stdout is reserved for MCP traffic and command output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	textfit.SetLogger(logger.With("component", "textfit"))

	switch cmd {
	case "serve":
		logger.Debug("starting", "name", server.ServerName, "version", Version, "built", BuildTime, "commit", GitCommit)
		if err := server.New(cfg, Version).Run(); err != nil {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	case "render":
		exitOn(runRender(cfg, args))
	case "fit":
		exitOn(runFit(cfg, args))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}
}

func isMetaFlag(arg string) bool {
	switch arg {
	case "--version", "-v", "--help", "-h":
		return true
	}
	return false
}

func exitOn(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if render.IsInputError(err) {
		os.Exit(2)
	}
	os.Exit(1)
}

func usage() {
	fmt.Printf("%s - label text fitting and rendering\n", server.ServerName)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  label-mcp [serve]              Run the MCP server on stdin/stdout")
	fmt.Println("  label-mcp render [flags]       Render a master label for a jurisdiction")
	fmt.Println("  label-mcp fit [flags] TEXT     Fit a text into a box and print the choice")
	fmt.Println("  label-mcp version              Print version information")
	fmt.Println()
	fmt.Println("Run 'label-mcp render -h' or 'label-mcp fit -h' for flags.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=path         YAML configuration file\n", config.EnvConfig)
	fmt.Printf("  %s=debug     Log level (debug, info, warn, error)\n", config.EnvLogLevel)
	fmt.Printf("  %s=dir        Directory of bundled fonts\n", config.EnvFontDir)
	fmt.Printf("  %s=path       Default template document\n", config.EnvTemplates)
	fmt.Printf("  %s=path           Default rule-set document\n", config.EnvRules)
	fmt.Println()
	fmt.Println("The server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

type renderFlags struct {
	interactive  bool
	sample       string
	image        string
	templates    string
	template     string
	rules        string
	jurisdiction string
	out          string
	debug        bool
}

func runRender(cfg config.Config, args []string) error {
	var f renderFlags
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.BoolVar(&f.interactive, "interactive", false, "choose sample, template and jurisdiction at prompts")
	fs.StringVar(&f.sample, "sample", "", "bundled sample master label")
	fs.StringVar(&f.image, "image", "", "master label image")
	fs.StringVar(&f.templates, "templates", cfg.Templates, "template document (JSON or YAML)")
	fs.StringVar(&f.template, "template", "", "template name (default: the one matching the image)")
	fs.StringVar(&f.rules, "rules", cfg.Rules, "rule-set document (default: built-in demo rules)")
	fs.StringVar(&f.jurisdiction, "jurisdiction", "", "jurisdiction to render")
	fs.StringVar(&f.out, "out", defaultOutput, "output PNG path")
	fs.BoolVar(&f.debug, "debug", false, "outline rendered regions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	templates, err := labeldata.LoadTemplates(f.templates)
	if err != nil {
		return err
	}
	rules := labeldata.DemoRules()
	if f.rules != "" {
		if rules, err = labeldata.LoadRuleSet(f.rules); err != nil {
			return err
		}
	}

	if f.interactive {
		if err := promptRender(&f, templates, rules); err != nil {
			return err
		}
	}

	master := f.image
	if f.sample != "" {
		file, ok := labeldata.SampleImages[f.sample]
		if !ok {
			return fmt.Errorf("%w: unknown sample %q", render.ErrSourceNotFound, f.sample)
		}
		master = file
	}
	if master == "" {
		return errors.New("one of -image or -sample is required")
	}

	name := f.template
	if name == "" {
		name = filepath.Base(master)
	}
	tpl, err := labeldata.SelectTemplate(templates, name)
	if err != nil && f.template == "" {
		tpl, err = labeldata.SelectTemplate(templates, "")
	}
	if err != nil {
		return err
	}

	rep, err := cfg.NewRenderer(f.debug).RenderFile(imaging.NewImageCache(), master, tpl, f.jurisdiction, rules, f.out)
	if err != nil {
		return err
	}
	return printJSON(rep)
}

// promptRender fills the render flags left empty by asking on the terminal.
func promptRender(f *renderFlags, templates []labeldata.Template, rules labeldata.RuleSet) error {
	if f.image == "" && f.sample == "" {
		var samples []string
		for name := range labeldata.SampleImages {
			samples = append(samples, name)
		}
		sort.Strings(samples)
		if err := survey.AskOne(&survey.Select{
			Message: "Master label:",
			Options: samples,
		}, &f.sample); err != nil {
			return err
		}
	}
	if f.template == "" && len(templates) > 1 {
		if err := survey.AskOne(&survey.Select{
			Message: "Template:",
			Options: labeldata.TemplateNames(templates),
		}, &f.template); err != nil {
			return err
		}
	}
	if f.jurisdiction == "" {
		if err := survey.AskOne(&survey.Select{
			Message: "Jurisdiction:",
			Options: rules.Jurisdictions(),
		}, &f.jurisdiction); err != nil {
			return err
		}
	}
	if !f.debug {
		if err := survey.AskOne(&survey.Confirm{
			Message: "Outline rendered regions?",
		}, &f.debug); err != nil {
			return err
		}
	}
	return nil
}

func runFit(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("fit", flag.ContinueOnError)
	width := fs.Int("width", 0, "box width in pixels")
	height := fs.Int("height", 0, "box height in pixels")
	maxSize := fs.Int("max-size", cfg.MaxFontSize, "largest size to try")
	minSize := fs.Int("min-size", cfg.MinFontSize, "smallest size to try")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if text == "" || *width <= 0 || *height <= 0 {
		return errors.New("usage: label-mcp fit -width W -height H TEXT")
	}

	opts := cfg.FitOptions()
	opts.MaxSize, opts.MinSize = *maxSize, *minSize
	loader := textfit.NewLoader(textfit.DefaultStrategies(cfg.FontDir)...)
	fitted := textfit.NewFitter(loader, opts).Fit(strings.ReplaceAll(text, `\n`, "\n"), *width, *height)
	defer fitted.Face.Close()
	return printJSON(fitted)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
