// Package chrome is a Rasterizer backed by headless Chrome.
package chrome

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"image/png"
	"math"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/wudi/texkit/layout"
	"github.com/wudi/texkit/observability"
	"github.com/wudi/texkit/raster"
)

var (
	ErrClosed           = errors.New("chrome rasterizer is closed")
	ErrScreenshot       = errors.New("screenshot capture failed")
	ErrSetContent       = errors.New("set document content failed")
	ErrDecodeScreenshot = errors.New("screenshot decode failed")
)

// page shell sized like the built-in surface: one A4 width, at least one A4
// tall. The minimum height is floored to whole pixels so a short page never
// rounds up into a second one.
var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
html, body { margin: 0; background: #fff; }
body { box-sizing: border-box; width: 210mm; min-height: 1122px; padding: 20px; font-size: 11px; line-height: 1.6; color: #000; }
</style></head><body>{{.}}</body></html>`))

// Config controls the browser. Flags are passed to the Chrome command line.
type Config struct {
	Settle   time.Duration
	Scale    float64
	Flags    map[string]interface{}
	ExecPath string
}

// Rasterizer renders fragments in tabs of one shared browser. Tabs are
// serialized; concurrent callers wait their turn.
type Rasterizer struct {
	mu     sync.Mutex
	closed bool

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	cfg    Config
	logger observability.Logger
}

// New starts a headless browser.
func New(cfg Config, logger observability.Logger) (*Rasterizer, error) {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
	)
	for k, v := range cfg.Flags {
		opts = append(opts, chromedp.Flag(k, v))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start Chrome: %w", err)
	}

	logger.Info("chrome rasterizer started", observability.Float64("scale", cfg.Scale))
	return &Rasterizer{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		cfg:           cfg,
		logger:        logger,
	}, nil
}

func (r *Rasterizer) Fingerprint() string {
	return fmt.Sprintf("chrome/scale=%g", r.cfg.Scale)
}

// Rasterize opens a blank tab, sets the fragment as its document, waits the
// settle delay and captures the full page. The tab is closed on every path.
func (r *Rasterizer) Rasterize(ctx context.Context, html string) (*raster.PageImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	var doc bytes.Buffer
	if err := shell.Execute(&doc, template.HTML(html)); err != nil {
		return nil, fmt.Errorf("build page: %w", err)
	}

	tabCtx, closeTab := chromedp.NewContext(r.browserCtx)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	start := time.Now()
	width := int64(math.Ceil(layout.A4Width))
	var shot []byte
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(width, int64(math.Floor(raster.A4Height)), chromedp.EmulateScale(r.cfg.Scale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrSetContent, err)
			}
			if err := page.SetDocumentContent(tree.Frame.ID, doc.String()).Do(ctx); err != nil {
				return fmt.Errorf("%w: %v", ErrSetContent, err)
			}
			return nil
		}),
		chromedp.Sleep(r.cfg.Settle),
		chromedp.FullScreenshot(&shot, 100),
	)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	if len(shot) == 0 {
		return nil, raster.ErrEmptyContent
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeScreenshot, err)
	}
	b := img.Bounds()
	r.logger.Debug("chrome screenshot captured",
		observability.Int("width_px", b.Dx()),
		observability.Int("height_px", b.Dy()),
		observability.Duration("elapsed", time.Since(start)))
	return &raster.PageImage{Image: img, Width: b.Dx(), Height: b.Dy(), Scale: r.cfg.Scale}, nil
}

// Close terminates the browser.
func (r *Rasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.browserCancel()
	r.allocCancel()
	return nil
}

var _ raster.Rasterizer = (*Rasterizer)(nil)
