// Package raster turns HTML fragments into page-wide bitmaps and slices those
// bitmaps onto PDF pages.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"time"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/texkit/fonts"
	"github.com/wudi/texkit/layout"
	"github.com/wudi/texkit/observability"
)

var (
	ErrEmptyContent    = errors.New("no content to rasterize")
	ErrSurfaceTooLarge = errors.New("render surface exceeds maximum height")
)

// A4Height is 297mm in CSS pixels.
const A4Height = 297 * 96 / 25.4

// PageImage is the captured bitmap of a whole fragment. Width and Height are
// in device pixels; Scale is device pixels per CSS pixel.
type PageImage struct {
	Image  image.Image
	Width  int
	Height int
	Scale  float64
}

// Rasterizer renders an HTML fragment into a single tall image.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string) (*PageImage, error)
}

// Fingerprinter is implemented by rasterizers whose output depends on
// settings beyond the HTML. The fingerprint becomes part of cache keys.
type Fingerprinter interface {
	Fingerprint() string
}

// Fingerprint identifies r's rendering settings. Rasterizers that do not
// implement Fingerprinter are identified by type.
func Fingerprint(r Rasterizer) string {
	if f, ok := r.(Fingerprinter); ok {
		return f.Fingerprint()
	}
	return fmt.Sprintf("%T", r)
}

// Engine is the built-in Rasterizer. It lays the fragment out with the Go
// font family and paints it onto a pooled surface.
type Engine struct {
	fonts      *fonts.Registry
	scale      float64
	settle     time.Duration
	maxHeight  int
	layoutOpts []layout.Option
	logger     observability.Logger

	surfaces surfacePool
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithScale sets the device pixel ratio. Default 2.
func WithScale(scale float64) Option {
	return func(e *Engine) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// WithSettleDelay waits d after layout before painting.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.settle = d
	}
}

// WithMaxHeight caps the surface height in device pixels. Zero disables the cap.
func WithMaxHeight(px int) Option {
	return func(e *Engine) {
		e.maxHeight = px
	}
}

func WithFonts(reg *fonts.Registry) Option {
	return func(e *Engine) {
		e.fonts = reg
	}
}

// WithLayoutOptions passes options to the layout engine used per call.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(e *Engine) {
		e.layoutOpts = append(e.layoutOpts, opts...)
	}
}

func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates the built-in rasterizer. Fonts default to the Go family.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		scale:     2,
		maxHeight: 32000,
		logger:    observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fonts == nil {
		reg, err := fonts.Default()
		if err != nil {
			return nil, fmt.Errorf("load default fonts: %w", err)
		}
		e.fonts = reg
	}
	return e, nil
}

// Fingerprint reports the settings that change the painted output.
func (e *Engine) Fingerprint() string {
	return fmt.Sprintf("builtin/scale=%g/max=%d", e.scale, e.maxHeight)
}

// Rasterize lays html out at one A4 width and paints it. The surface is at
// least one A4 page tall and is released before returning on every path.
func (e *Engine) Rasterize(ctx context.Context, html string) (*PageImage, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyContent
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := layout.NewEngine(fonts.NewMeasurer(e.fonts), e.layoutOpts...).Layout(html)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	width := int(math.Ceil(res.Width * e.scale))
	height := int(math.Ceil(res.Height * e.scale))
	// floored so a one-page surface does not round up into a second page
	if minHeight := int(A4Height * e.scale); height < minHeight {
		height = minHeight
	}
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyContent
	}
	if e.maxHeight > 0 && height > e.maxHeight {
		return nil, fmt.Errorf("%w: %dpx > %dpx", ErrSurfaceTooLarge, height, e.maxHeight)
	}

	surface := e.surfaces.acquire(width, height)
	defer e.surfaces.release(surface)

	if err := wait(ctx, e.settle); err != nil {
		return nil, err
	}
	if err := e.paint(surface.Image(), res); err != nil {
		return nil, err
	}

	e.logger.Debug("fragment rasterized",
		observability.Int("width_px", width),
		observability.Int("height_px", height),
		observability.Int("lines", res.Lines),
		observability.Duration("elapsed", time.Since(start)))

	return &PageImage{Image: surface.snapshot(height), Width: width, Height: height, Scale: e.scale}, nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type faceKey struct {
	style fonts.Style
	size  float64
}

func (e *Engine) paint(dst *image.RGBA, res *layout.Result) error {
	s := e.scale
	for _, r := range res.Rects {
		fillRect(dst, r.X*s, r.Y*s, r.W*s, r.H*s, r.Color)
	}

	faces := map[faceKey]xfont.Face{}
	defer func() {
		for _, f := range faces {
			f.Close()
		}
	}()

	for _, run := range res.Runs {
		key := faceKey{run.Font, run.Size * s}
		face, ok := faces[key]
		if !ok {
			var err error
			face, err = e.fonts.NewFace(run.Font, key.size)
			if err != nil {
				return fmt.Errorf("paint %q: %w", run.Text, err)
			}
			faces[key] = face
		}
		d := xfont.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(run.Color),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.Int26_6(run.X * s * 64), Y: fixed.Int26_6(run.Baseline * s * 64)},
		}
		d.DrawString(run.Text)

		if run.Underline {
			thickness := math.Max(1, run.Size*s/14)
			fillRect(dst, run.X*s, (run.Baseline+run.Descent*0.4)*s, run.Width*s, thickness, run.Color)
		}
	}
	return nil
}

func fillRect(dst *image.RGBA, x, y, w, h float64, c color.RGBA) {
	r := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}
