package layout

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/texkit/fonts"
)

// A4Width is 210mm in CSS pixels.
const A4Width = 210 * 96 / 25.4

// Measurer supplies text advances and vertical metrics in pixels.
type Measurer interface {
	Advance(text string, style fonts.Style, size float64) float64
	Metrics(style fonts.Style, size float64) fonts.Metrics
}

// Run is a piece of text positioned on its baseline.
type Run struct {
	X, Baseline float64
	Width       float64
	Ascent      float64
	Descent     float64
	Text        string
	Font        fonts.Style
	Size        float64
	Color       color.RGBA
	Underline   bool
}

// Rect is a filled rectangle, used for rules and code backgrounds.
type Rect struct {
	X, Y, W, H float64
	Color      color.RGBA
}

// Result is the laid-out fragment in CSS pixels. Rects paint below Runs.
type Result struct {
	Width  float64
	Height float64
	Lines  int
	Runs   []Run
	Rects  []Rect
}

// Engine lays out an HTML fragment in a fixed-width column. An Engine is not
// safe for concurrent use.
type Engine struct {
	m Measurer

	DefaultFontSize float64
	LineHeight      float64 // multiplier, e.g. 1.6
	Color           color.RGBA
	Padding         Edges

	width float64

	// state for one Layout call
	cursorY       float64
	pendingMargin float64
	marker        *Run
	res           *Result
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithDefaultFontSize sets the root font size in pixels.
func WithDefaultFontSize(size float64) Option {
	return func(e *Engine) {
		e.DefaultFontSize = size
	}
}

// WithLineHeight sets the root line height multiplier.
func WithLineHeight(height float64) Option {
	return func(e *Engine) {
		e.LineHeight = height
	}
}

// WithPadding sets the padding of the render surface.
func WithPadding(p Edges) Option {
	return func(e *Engine) {
		e.Padding = p
	}
}

// WithWidth sets the surface width in pixels.
func WithWidth(width float64) Option {
	return func(e *Engine) {
		e.width = width
	}
}

// WithColor sets the root text colour.
func WithColor(c color.RGBA) Option {
	return func(e *Engine) {
		e.Color = c
	}
}

// NewEngine creates a layout engine with the render surface defaults: one A4
// width, 11px text, 1.6 line height, 20px padding, black text.
func NewEngine(m Measurer, opts ...Option) *Engine {
	e := &Engine{
		m:               m,
		DefaultFontSize: 11,
		LineHeight:      1.6,
		Color:           Black,
		Padding:         Edges{Top: 20, Right: 20, Bottom: 20, Left: 20},
		width:           A4Width,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Width() float64 { return e.width }

// Layout parses source and positions its content.
func (e *Engine) Layout(source string) (*Result, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	inner := e.width - e.Padding.Left - e.Padding.Right
	if inner <= 0 {
		return nil, fmt.Errorf("layout width %.1f leaves no room for content", e.width)
	}

	e.res = &Result{Width: e.width}
	e.cursorY = e.Padding.Top
	e.pendingMargin = 0
	e.marker = nil

	root := Style{
		FontSize:   e.DefaultFontSize,
		LineHeight: e.LineHeight,
		Color:      e.Color,
	}
	e.children(doc, root, e.Padding.Left, inner)

	e.res.Height = e.cursorY + e.pendingMargin + e.Padding.Bottom
	res := e.res
	e.res = nil
	return res, nil
}

// settle applies collapsed vertical margin before content is placed.
func (e *Engine) settle() {
	e.cursorY += e.pendingMargin
	e.pendingMargin = 0
}

func (e *Engine) margin(m float64) {
	if m > e.pendingMargin {
		e.pendingMargin = m
	}
}

// children lays out the content of a block container: runs of inline nodes
// become line boxes, block children recurse.
func (e *Engine) children(n *html.Node, st Style, x, width float64) {
	var spans []span
	flush := func() {
		e.inline(spans, st, x, width)
		spans = nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if skipNode(c) {
			continue
		}
		if isBlockNode(c) {
			flush()
			e.block(c, st, x, width, "")
			continue
		}
		collectInline(c, st, &spans)
	}
	flush()
}

func (e *Engine) block(n *html.Node, parent Style, x, width float64, marker string) {
	st := computeStyle(n, parent)

	e.margin(st.Margin.Top)
	bx := x + st.Margin.Left
	bw := width - st.Margin.Left - st.Margin.Right
	if st.Padding.Top > 0 {
		e.settle()
		e.cursorY += st.Padding.Top
	}
	ix := bx + st.Padding.Left
	iw := bw - st.Padding.Left - st.Padding.Right
	if iw < st.FontSize {
		iw = st.FontSize
	}

	switch n.DataAtom {
	case atom.Ul, atom.Ol:
		e.list(n, st, ix, iw)
	case atom.Li:
		if marker == "" {
			marker = "•"
		}
		e.setMarker(marker, st, ix)
		e.children(n, st, ix, iw)
		e.marker = nil
	default:
		e.children(n, st, ix, iw)
	}

	if st.Padding.Bottom > 0 || st.BorderBottom.Width > 0 {
		e.settle()
		e.cursorY += st.Padding.Bottom
	}
	if st.BorderBottom.Width > 0 {
		e.res.Rects = append(e.res.Rects, Rect{X: bx, Y: e.cursorY, W: bw, H: st.BorderBottom.Width, Color: st.BorderBottom.Color})
		e.cursorY += st.BorderBottom.Width
	}
	e.margin(st.Margin.Bottom)
}

func (e *Engine) list(n *html.Node, st Style, x, width float64) {
	ordinal := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if skipNode(c) {
			continue
		}
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			ordinal++
			marker := "•"
			if n.DataAtom == atom.Ol {
				marker = strconv.Itoa(ordinal) + "."
			}
			e.block(c, st, x, width, marker)
			continue
		}
		if isBlockNode(c) {
			e.block(c, st, x, width, "")
			continue
		}
		var spans []span
		collectInline(c, st, &spans)
		e.inline(spans, st, x, width)
	}
}

// setMarker prepares a list marker hung to the left of the item's first line.
func (e *Engine) setMarker(text string, st Style, x float64) {
	font := st.Font()
	w := e.m.Advance(text, font, st.FontSize)
	gap := st.FontSize * 0.5
	e.marker = &Run{
		X:     x - gap - w,
		Width: w,
		Text:  text,
		Font:  font,
		Size:  st.FontSize,
		Color: st.Color,
	}
}

func isBlockNode(n *html.Node) bool {
	if n.Type == html.DocumentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Html, atom.Body, atom.Div, atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Li, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main,
		atom.Blockquote, atom.Pre, atom.Table, atom.Tbody, atom.Thead, atom.Tr, atom.Td, atom.Th,
		atom.Hr, atom.Dl, atom.Dt, atom.Dd, atom.Center:
		return true
	}
	return false
}

func skipNode(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return true
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Title, atom.Meta, atom.Link, atom.Img:
			return true
		}
	}
	return false
}
