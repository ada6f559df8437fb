package fonts

import (
	"fmt"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Style selects a face within a family.
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
	Mono
	MonoBold
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	case Mono:
		return "mono"
	case MonoBold:
		return "mono-bold"
	}
	return "regular"
}

// StyleFor maps CSS-ish flags to a Style. Monospace ignores italics.
func StyleFor(bold, italic, mono bool) Style {
	switch {
	case mono && bold:
		return MonoBold
	case mono:
		return Mono
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	}
	return Regular
}

// Metrics are vertical extents in pixels for one size.
type Metrics struct {
	Ascent  float64
	Descent float64
	Height  float64
}

// Registry holds parsed font programs. It is safe for concurrent use; the
// faces it creates are not.
type Registry struct {
	mu    sync.RWMutex
	data  map[Style][]byte
	fonts map[Style]*sfnt.Font
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry populated with the Go font family.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for style, ttf := range map[Style][]byte{
			Regular:    goregular.TTF,
			Bold:       gobold.TTF,
			Italic:     goitalic.TTF,
			BoldItalic: gobolditalic.TTF,
			Mono:       gomono.TTF,
			MonoBold:   gomonobold.TTF,
		} {
			if err := r.Register(style, ttf); err != nil {
				defaultErr = err
				return
			}
		}
		defaultRegistry = r
	})
	return defaultRegistry, defaultErr
}

func NewRegistry() *Registry {
	return &Registry{data: map[Style][]byte{}, fonts: map[Style]*sfnt.Font{}}
}

// Register parses a TrueType/OpenType program for style.
func (r *Registry) Register(style Style, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("font data for %s is empty", style)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s font: %w", style, err)
	}
	r.mu.Lock()
	r.data[style] = data
	r.fonts[style] = f
	r.mu.Unlock()
	return nil
}

// lookup falls back to Regular when a style is missing.
func (r *Registry) lookup(style Style) (*sfnt.Font, []byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.fonts[style]; ok {
		return f, r.data[style], nil
	}
	if f, ok := r.fonts[Regular]; ok {
		return f, r.data[Regular], nil
	}
	return nil, nil, fmt.Errorf("no font registered for %s", style)
}

// NewFace returns a rasterizing face at size pixels (72 DPI, so 1pt = 1px).
// The caller owns the face and must Close it.
func (r *Registry) NewFace(style Style, size float64) (xfont.Face, error) {
	f, _, err := r.lookup(style)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new %s face: %w", style, err)
	}
	return face, nil
}

// Metrics returns ascent, descent and recommended line height at size pixels.
func (r *Registry) Metrics(style Style, size float64) (Metrics, error) {
	f, _, err := r.lookup(style)
	if err != nil {
		return Metrics{}, err
	}
	m, err := f.Metrics(&sfnt.Buffer{}, fixed.Int26_6(size*64), xfont.HintingNone)
	if err != nil {
		return Metrics{}, fmt.Errorf("metrics for %s: %w", style, err)
	}
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent),
		Descent: fixedToFloat(m.Descent),
		Height:  fixedToFloat(m.Height),
	}, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64.0 }
