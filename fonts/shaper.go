package fonts

import (
	"bytes"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Measurer computes shaped advance widths. One Measurer serves one layout
// pass and is not safe for concurrent use.
type Measurer struct {
	reg    *Registry
	shaper shaping.HarfbuzzShaper
	faces  map[Style]*gofont.Face
}

func NewMeasurer(reg *Registry) *Measurer {
	return &Measurer{reg: reg, faces: map[Style]*gofont.Face{}}
}

func (m *Measurer) face(style Style) (*gofont.Face, error) {
	if f, ok := m.faces[style]; ok {
		return f, nil
	}
	_, data, err := m.reg.lookup(style)
	if err != nil {
		return nil, err
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	m.faces[style] = face
	return face, nil
}

// Advance returns the width in pixels of text set at size pixels.
func (m *Measurer) Advance(text string, style Style, size float64) float64 {
	if text == "" {
		return 0
	}
	face, err := m.face(style)
	if err != nil {
		return m.fallbackAdvance(text, style, size)
	}
	runes := []rune(text)
	script := DetectScript(runes)
	output := m.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      face,
		Size:      fixed.Int26_6(size * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	})
	return float64(output.Advance) / 64.0
}

// Metrics returns vertical extents for style at size pixels.
func (m *Measurer) Metrics(style Style, size float64) Metrics {
	if mt, err := m.reg.Metrics(style, size); err == nil {
		return mt
	}
	return Metrics{Ascent: size * 0.8, Descent: size * 0.2, Height: size * 1.2}
}

// fallbackAdvance measures with the rasterizing face when shaping is unavailable.
func (m *Measurer) fallbackAdvance(text string, style Style, size float64) float64 {
	face, err := m.reg.NewFace(style, size)
	if err != nil {
		return float64(len([]rune(text))) * size * 0.5
	}
	defer face.Close()
	return float64(xfont.MeasureString(face, text)) / 64.0
}

// DetectScript returns the most frequent script among runes, ignoring
// Common and Inherited characters. Latin when nothing else is found.
func DetectScript(runes []rune) language.Script {
	counts := map[language.Script]int{}
	best, bestN := language.Latin, 0
	for _, r := range runes {
		s := language.LookupScript(r)
		switch s {
		case language.Common, language.Inherited, language.Unknown:
			continue
		}
		counts[s]++
		if counts[s] > bestN {
			best, bestN = s, counts[s]
		}
	}
	return best
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	}
	return di.DirectionLTR
}
