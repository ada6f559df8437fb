package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/wudi/texkit/builder"
	"github.com/wudi/texkit/ir/semantic"
	"github.com/wudi/texkit/writer"
)

// A4 in PDF points.
const (
	A4WidthPt  = 595.28
	A4HeightPt = 841.89
)

// pageEpsilon absorbs rounding so an image exactly N pages tall yields N pages.
const pageEpsilon = 0.01

// PageCount returns ceil(height / pageHeight), at least 1.
func PageCount(height, pageHeight float64) int {
	if pageHeight <= 0 || height <= pageEpsilon {
		return 1
	}
	n := int(math.Ceil((height - pageEpsilon) / pageHeight))
	if n < 1 {
		n = 1
	}
	return n
}

// ScaledHeight is the image height once scaled to pageWidth.
func ScaledHeight(img *PageImage, pageWidth float64) float64 {
	if img == nil || img.Width == 0 {
		return 0
	}
	return float64(img.Height) * pageWidth / float64(img.Width)
}

// Paginate adds pages to b until the whole image, scaled to pageWidth, is
// shown. Every page draws the same image XObject shifted up by the height
// already consumed, so each shows the next slice. It returns the page count.
func Paginate(img *PageImage, b builder.PDFBuilder, pageWidth, pageHeight float64) (int, error) {
	if img == nil || img.Image == nil || img.Width == 0 || img.Height == 0 {
		return 0, ErrEmptyContent
	}
	if pageWidth <= 0 || pageHeight <= 0 {
		return 0, fmt.Errorf("invalid page size %.2fx%.2f", pageWidth, pageHeight)
	}

	h := ScaledHeight(img, pageWidth)
	xobj := builder.FromImage(img.Image)
	pages := PageCount(h, pageHeight)
	consumed := 0.0
	for i := 0; i < pages; i++ {
		b.NewPage(pageWidth, pageHeight).
			DrawRectangle(0, 0, pageWidth, pageHeight, builder.RectOptions{FillColor: builder.White}).
			DrawImage(xobj, 0, pageHeight+consumed-h, pageWidth, h, builder.ImageOptions{Interpolate: true}).
			Finish()
		consumed += pageHeight
	}
	return pages, nil
}

// PDFOptions controls document assembly.
type PDFOptions struct {
	PageWidth  float64
	PageHeight float64
	Info       *semantic.DocumentInfo
	Writer     writer.Config
}

// DefaultPDFOptions is A4 portrait with compressed streams.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{PageWidth: A4WidthPt, PageHeight: A4HeightPt, Writer: writer.DefaultConfig()}
}

// WritePDF paginates img and serializes the document.
func WritePDF(ctx context.Context, img *PageImage, w writer.Writer, opts PDFOptions) ([]byte, int, error) {
	if opts.PageWidth == 0 || opts.PageHeight == 0 {
		opts.PageWidth, opts.PageHeight = A4WidthPt, A4HeightPt
	}
	b := builder.NewBuilder()
	if opts.Info != nil {
		b.SetInfo(opts.Info)
	}
	pages, err := Paginate(img, b, opts.PageWidth, opts.PageHeight)
	if err != nil {
		return nil, 0, err
	}
	doc, err := b.Build()
	if err != nil {
		return nil, 0, fmt.Errorf("build document: %w", err)
	}
	var buf bytes.Buffer
	if err := w.Write(ctx, doc, &buf, opts.Writer); err != nil {
		return nil, 0, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), pages, nil
}

// ToPDF rasterizes html with r and returns the paginated PDF.
func ToPDF(ctx context.Context, r Rasterizer, html string, opts PDFOptions) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil rasterizer")
	}
	img, err := r.Rasterize(ctx, html)
	if err != nil {
		return nil, err
	}
	data, _, err := WritePDF(ctx, img, (&writer.WriterBuilder{}).Build(), opts)
	return data, err
}

// PageHeightPx converts a page height in points to image rows.
func PageHeightPx(img *PageImage, pageWidth, pageHeight float64) int {
	if img == nil || pageWidth <= 0 {
		return 0
	}
	return int(math.Round(pageHeight * float64(img.Width) / pageWidth))
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// PageSlices cuts img into consecutive pageHeightPx-tall slices for on-screen
// paged preview. The last slice may be shorter.
func PageSlices(img *PageImage, pageHeightPx int) []image.Image {
	if img == nil || img.Image == nil || pageHeightPx <= 0 {
		return nil
	}
	src, ok := img.Image.(subImager)
	if !ok {
		return []image.Image{img.Image}
	}
	b := img.Image.Bounds()
	n := PageCount(float64(b.Dy()), float64(pageHeightPx))
	out := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		top := b.Min.Y + i*pageHeightPx
		bottom := top + pageHeightPx
		if bottom > b.Max.Y {
			bottom = b.Max.Y
		}
		out = append(out, src.SubImage(image.Rect(b.Min.X, top, b.Max.X, bottom)))
	}
	return out
}
