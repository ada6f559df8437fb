package builder

import (
	"errors"
	"fmt"

	"github.com/wudi/texkit/ir/semantic"
)

// ErrNoPages is returned by Build when no page was added.
var ErrNoPages = errors.New("document has no pages")

// PDFBuilder provides a fluent API for PDF construction.
type PDFBuilder interface {
	NewPage(width, height float64) PageBuilder
	SetInfo(info *semantic.DocumentInfo) PDFBuilder
	SetLanguage(lang string) PDFBuilder
	PageCount() int
	Build() (*semantic.Document, error)
}

// PageBuilder provides a fluent API for page construction.
type PageBuilder interface {
	DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder
	DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder
	Finish() PDFBuilder
}

// ImageOptions configures image drawing.
type ImageOptions struct {
	Interpolate bool
}

// RectOptions configures rectangle filling.
type RectOptions struct {
	FillColor Color
}

// Color represents an RGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// White is the page background color.
var White = Color{R: 1, G: 1, B: 1}

type builderImpl struct {
	pages        []*semantic.Page
	info         *semantic.DocumentInfo
	lang         string
	xobjectCount int
	xobjectNames map[*semantic.Image]string
}

type pageBuilderImpl struct {
	parent *builderImpl
	page   *semantic.Page
}

// NewBuilder constructs a PDFBuilder.
func NewBuilder() PDFBuilder { return &builderImpl{} }

func (b *builderImpl) NewPage(w, h float64) PageBuilder {
	p := &semantic.Page{MediaBox: semantic.Rectangle{LLX: 0, LLY: 0, URX: w, URY: h}}
	b.pages = append(b.pages, p)
	return &pageBuilderImpl{parent: b, page: p}
}

func (b *builderImpl) SetInfo(info *semantic.DocumentInfo) PDFBuilder {
	b.info = info
	return b
}

func (b *builderImpl) SetLanguage(lang string) PDFBuilder {
	b.lang = lang
	return b
}

func (b *builderImpl) PageCount() int { return len(b.pages) }

func (b *builderImpl) Build() (*semantic.Document, error) {
	if len(b.pages) == 0 {
		return nil, ErrNoPages
	}
	for i, p := range b.pages {
		p.Index = i
	}
	return &semantic.Document{
		Pages: b.pages,
		Info:  b.info,
		Lang:  b.lang,
	}, nil
}

// DrawImage paints img into the rectangle whose lower-left corner is (x, y).
// The same *semantic.Image drawn on several pages is shared as one XObject.
func (p *pageBuilderImpl) DrawImage(img *semantic.Image, x, y, width, height float64, opts ImageOptions) PageBuilder {
	if img == nil {
		return p
	}
	res := p.ensureResources()

	name := p.parent.imageName(img)
	if _, exists := res.XObjects[name]; !exists {
		xobj := *img
		xobj.Subtype = "Image"
		if opts.Interpolate {
			xobj.Interpolate = true
		}
		res.XObjects[name] = xobj
	}
	w := width
	if w == 0 {
		w = float64(img.Width)
	}
	h := height
	if h == 0 {
		h = float64(img.Height)
	}

	p.emit(
		op("q"),
		op("cm", nums(w, 0, 0, h, x, y)...),
		op("Do", semantic.NameOperand{Value: name}),
		op("Q"),
	)
	return p
}

func (p *pageBuilderImpl) DrawRectangle(x, y, width, height float64, opts RectOptions) PageBuilder {
	c := opts.FillColor
	p.emit(
		op("q"),
		op("rg", nums(c.R, c.G, c.B)...),
		op("re", nums(x, y, width, height)...),
		op("f"),
		op("Q"),
	)
	return p
}

func (p *pageBuilderImpl) Finish() PDFBuilder { return p.parent }

func (b *builderImpl) imageName(img *semantic.Image) string {
	if b.xobjectNames == nil {
		b.xobjectNames = make(map[*semantic.Image]string)
	}
	if name, ok := b.xobjectNames[img]; ok {
		return name
	}
	b.xobjectCount++
	name := fmt.Sprintf("Im%d", b.xobjectCount)
	b.xobjectNames[img] = name
	return name
}

func (p *pageBuilderImpl) ensureResources() *semantic.Resources {
	if p.page.Resources == nil {
		p.page.Resources = &semantic.Resources{}
	}
	if p.page.Resources.XObjects == nil {
		p.page.Resources.XObjects = make(map[string]semantic.XObject)
	}
	return p.page.Resources
}

// emit appends ops to the page's single content stream.
func (p *pageBuilderImpl) emit(ops ...semantic.Operation) {
	if len(p.page.Contents) == 0 {
		p.page.Contents = []semantic.ContentStream{{}}
	}
	p.page.Contents[0].Operations = append(p.page.Contents[0].Operations, ops...)
}

func op(operator string, operands ...semantic.Operand) semantic.Operation {
	return semantic.Operation{Operator: operator, Operands: operands}
}

func nums(vals ...float64) []semantic.Operand {
	out := make([]semantic.Operand, len(vals))
	for i, v := range vals {
		out[i] = semantic.NumberOperand{Value: v}
	}
	return out
}
