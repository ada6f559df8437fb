package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/texkit/compiler"
	"github.com/wudi/texkit/config"
	"github.com/wudi/texkit/latex"
	"github.com/wudi/texkit/observability"
	"github.com/wudi/texkit/raster"
	"github.com/wudi/texkit/templates"
)

type mode int

const (
	modePDF mode = iota
	modeValidate
	modeHTML
	modeLatex
)

type options struct {
	input      string
	output     string
	configPath string
	template   string
	dataPath   string
	previewDir string
	thumbWidth int
	mode       mode
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "texkit: %v\n", err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "texkit: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: texkit [flags] [file.tex|-]\n")
		flag.PrintDefaults()
	}
	validate := flag.Bool("validate", false, "Print validation messages and exit")
	html := flag.Bool("html", false, "Print the transpiled HTML fragment instead of a PDF")
	latexOnly := flag.Bool("latex", false, "With -template, print the generated LaTeX")
	flag.StringVar(&opts.output, "o", "output.pdf", "Output PDF path")
	flag.StringVar(&opts.configPath, "config", "", "YAML config file")
	flag.StringVar(&opts.template, "template", "", "Generate the source from a resume template (modern, minimalist, creative, professional)")
	flag.StringVar(&opts.dataPath, "data", "", "Resume data JSON for -template (defaults to sample data)")
	flag.StringVar(&opts.previewDir, "preview", "", "Directory for per-page PNG thumbnails")
	flag.IntVar(&opts.thumbWidth, "thumb-width", 320, "Thumbnail width in pixels")
	flag.Parse()

	switch {
	case *validate:
		opts.mode = modeValidate
	case *html:
		opts.mode = modeHTML
	case *latexOnly:
		opts.mode = modeLatex
	}
	if opts.template == "" {
		if flag.NArg() != 1 {
			flag.Usage()
			return options{}, fmt.Errorf("missing input file")
		}
		opts.input = flag.Arg(0)
	}
	if opts.mode == modeLatex && opts.template == "" {
		return options{}, fmt.Errorf("-latex requires -template")
	}
	return opts, nil
}

func run(ctx context.Context, opts options, out io.Writer) error {
	source, err := loadSource(opts)
	if err != nil {
		return err
	}

	switch opts.mode {
	case modeLatex:
		_, err := io.WriteString(out, source)
		return err
	case modeValidate:
		report := latex.Validate(source)
		if report.IsValid {
			fmt.Fprintln(out, "valid")
			return nil
		}
		for _, msg := range report.Errors {
			fmt.Fprintf(out, "warning: %s\n", msg)
		}
		return nil
	case modeHTML:
		res := latex.Transpile(source)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		_, err := io.WriteString(out, res.HTML+"\n")
		return err
	}

	cfg := config.Default()
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}
	// one-shot runs gain nothing from a cache
	cfg.Cache.Type = config.CacheNone

	zl, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer zl.Sync()
	logger := observability.NewZap(zl)

	c, closeFn, err := compiler.FromConfig(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := c.CompileResult(ctx, source)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, res.PDF, 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	fmt.Fprintf(out, "wrote %s (%d pages, %.1f KB)\n", opts.output, res.Pages, float64(len(res.PDF))/1024)
	if res.Degraded {
		fmt.Fprintln(out, "note: LaTeX could not be fully parsed; the PDF shows the source as plain text")
	}

	if opts.previewDir != "" {
		return writePreviews(ctx, cfg, res.HTML, opts.previewDir, opts.thumbWidth, out)
	}
	return nil
}

func loadSource(opts options) (string, error) {
	if opts.template != "" {
		tmpl, err := templates.Get(opts.template)
		if err != nil {
			return "", err
		}
		data := templates.SampleData()
		if opts.dataPath != "" {
			raw, err := os.ReadFile(opts.dataPath)
			if err != nil {
				return "", fmt.Errorf("read resume data: %w", err)
			}
			data = &templates.ResumeData{}
			if err := json.Unmarshal(raw, data); err != nil {
				return "", fmt.Errorf("parse resume data: %w", err)
			}
		}
		return tmpl.Generate(data)
	}

	var raw []byte
	var err error
	if opts.input == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(opts.input)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(raw), nil
}

// writePreviews renders html again with the built-in engine and writes one
// thumbnail per page.
func writePreviews(ctx context.Context, cfg *config.Config, html, dir string, width int, out io.Writer) error {
	e, err := raster.NewEngine(raster.WithScale(cfg.Render.Scale), raster.WithMaxHeight(cfg.Render.MaxHeightPx))
	if err != nil {
		return err
	}
	img, err := e.Rasterize(ctx, html)
	if err != nil {
		return fmt.Errorf("rasterize preview: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preview dir: %w", err)
	}

	pageW, pageH := cfg.Page.PagePoints()
	slices := raster.PageSlices(img, raster.PageHeightPx(img, pageW, pageH))
	for i, slice := range slices {
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i+1))
		if err := writePNG(path, raster.Thumbnail(slice, width)); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "wrote %d previews to %s\n", len(slices), strings.TrimSuffix(dir, "/"))
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
