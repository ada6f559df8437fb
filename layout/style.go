package layout

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/texkit/fonts"
)

// Edges holds per-side lengths in pixels.
type Edges struct {
	Top, Right, Bottom, Left float64
}

// Border is a solid rule drawn under a block.
type Border struct {
	Width float64
	Color color.RGBA
}

// Style is the computed style of a node. Inherited properties are copied to
// children; box properties are reset per element.
type Style struct {
	FontSize   float64
	LineHeight float64 // multiplier of FontSize
	Bold       bool
	Italic     bool
	Mono       bool
	Underline  bool
	Color      color.RGBA
	Background *color.RGBA

	Margin       Edges
	Padding      Edges
	BorderBottom Border
}

func (s Style) Font() fonts.Style { return fonts.StyleFor(s.Bold, s.Italic, s.Mono) }

// inherit returns the inheritable part of s.
func (s Style) inherit() Style {
	return Style{
		FontSize:   s.FontSize,
		LineHeight: s.LineHeight,
		Bold:       s.Bold,
		Italic:     s.Italic,
		Mono:       s.Mono,
		Underline:  s.Underline,
		Color:      s.Color,
	}
}

var (
	Black = color.RGBA{A: 0xff}
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var namedColors = map[string]color.RGBA{
	"black": Black,
	"white": White,
	"gray":  {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"grey":  {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"red":   {R: 0xff, A: 0xff},
	"green": {G: 0x80, A: 0xff},
	"blue":  {B: 0xff, A: 0xff},
	"navy":  {B: 0x80, A: 0xff},
}

// computeStyle applies user-agent defaults for n and then its style attribute.
func computeStyle(n *html.Node, parent Style) Style {
	s := parent.inherit()
	em := parent.FontSize

	switch n.DataAtom {
	case atom.Strong, atom.B:
		s.Bold = true
	case atom.Em, atom.I:
		s.Italic = true
	case atom.U, atom.Ins:
		s.Underline = true
	case atom.Code, atom.Tt, atom.Kbd, atom.Samp, atom.Pre:
		s.Mono = true
	case atom.P:
		s.Margin.Top, s.Margin.Bottom = em, em
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		scale, margin := headingDefaults(n.DataAtom)
		s.Bold = true
		s.FontSize = em * scale
		s.Margin.Top, s.Margin.Bottom = s.FontSize*margin, s.FontSize*margin
	case atom.Ul, atom.Ol:
		s.Margin.Top, s.Margin.Bottom = em, em
		s.Padding.Left = 40
	}

	if raw, ok := attr(n, "style"); ok {
		applyDeclarations(&s, raw, em)
	}
	return s
}

func headingDefaults(a atom.Atom) (scale, margin float64) {
	switch a {
	case atom.H1:
		return 2, 0.67
	case atom.H2:
		return 1.5, 0.83
	case atom.H3:
		return 1.17, 1
	case atom.H4:
		return 1, 1.33
	case atom.H5:
		return 0.83, 1.67
	}
	return 0.67, 2.33
}

// applyDeclarations parses an inline style attribute. Unknown properties are ignored.
func applyDeclarations(s *Style, raw string, parentEm float64) {
	for _, decl := range strings.Split(raw, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "font-size":
			if v, ok := parseLength(value, parentEm); ok && v > 0 {
				s.FontSize = v
			}
		case "font-weight":
			s.Bold = value == "bold" || value == "bolder" || numericWeight(value) >= 600
		case "font-style":
			s.Italic = value == "italic" || value == "oblique"
		case "font-family":
			s.Mono = strings.Contains(strings.ToLower(value), "monospace")
		case "line-height":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				s.LineHeight = f
			} else if v, ok := parseLength(value, s.FontSize); ok && s.FontSize > 0 {
				s.LineHeight = v / s.FontSize
			}
		case "color":
			if c, ok := parseColor(value); ok {
				s.Color = c
			}
		case "background-color", "background":
			if c, ok := parseColor(value); ok {
				s.Background = &c
			}
		case "text-decoration", "text-decoration-line":
			s.Underline = strings.Contains(value, "underline")
		case "margin":
			s.Margin = parseEdges(value, s.FontSize, s.Margin)
		case "margin-top":
			setLength(&s.Margin.Top, value, s.FontSize)
		case "margin-bottom":
			setLength(&s.Margin.Bottom, value, s.FontSize)
		case "margin-left":
			setLength(&s.Margin.Left, value, s.FontSize)
		case "margin-right":
			setLength(&s.Margin.Right, value, s.FontSize)
		case "padding":
			s.Padding = parseEdges(value, s.FontSize, s.Padding)
		case "padding-top":
			setLength(&s.Padding.Top, value, s.FontSize)
		case "padding-bottom":
			setLength(&s.Padding.Bottom, value, s.FontSize)
		case "padding-left":
			setLength(&s.Padding.Left, value, s.FontSize)
		case "padding-right":
			setLength(&s.Padding.Right, value, s.FontSize)
		case "border-bottom":
			s.BorderBottom = parseBorder(value, s.FontSize)
		}
	}
}

func numericWeight(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func setLength(dst *float64, value string, em float64) {
	if v, ok := parseLength(value, em); ok {
		*dst = v
	}
}

// parseLength converts a CSS length to pixels. Percentages resolve against em.
func parseLength(v string, em float64) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "0" {
		return 0, true
	}
	units := []struct {
		suffix string
		factor float64
	}{
		{"px", 1},
		{"pt", 96.0 / 72.0},
		{"mm", 96.0 / 25.4},
		{"cm", 96.0 / 2.54},
		{"in", 96},
		{"rem", 16},
		{"em", em},
		{"%", em / 100},
	}
	for _, u := range units {
		if strings.HasSuffix(v, u.suffix) {
			f, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
			if err != nil {
				return 0, false
			}
			return f * u.factor, true
		}
	}
	return 0, false
}

// parseEdges handles the 1-4 value shorthand. Values that fail to parse keep prev.
func parseEdges(value string, em float64, prev Edges) Edges {
	parts := strings.Fields(value)
	vals := make([]float64, 0, 4)
	for _, p := range parts {
		if p == "auto" {
			vals = append(vals, 0)
			continue
		}
		f, ok := parseLength(p, em)
		if !ok {
			return prev
		}
		vals = append(vals, f)
	}
	switch len(vals) {
	case 1:
		return Edges{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		return Edges{vals[0], vals[1], vals[0], vals[1]}
	case 3:
		return Edges{vals[0], vals[1], vals[2], vals[1]}
	case 4:
		return Edges{vals[0], vals[1], vals[2], vals[3]}
	}
	return prev
}

func parseBorder(value string, em float64) Border {
	b := Border{Color: Black}
	for _, part := range strings.Fields(value) {
		if w, ok := parseLength(part, em); ok {
			b.Width = w
			continue
		}
		if c, ok := parseColor(part); ok {
			b.Color = c
		}
		if part == "none" {
			return Border{}
		}
	}
	return b
}

func parseColor(v string) (color.RGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if !strings.HasPrefix(v, "#") {
		return color.RGBA{}, false
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
