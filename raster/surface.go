package raster

import (
	"image"
	"image/color"
	"sync"
)

// Surface is an offscreen RGBA canvas owned by one Rasterize call.
type Surface struct {
	img *image.RGBA
}

// Image returns the canvas. It is only valid until the surface is released.
func (s *Surface) Image() *image.RGBA { return s.img }

// surfacePool recycles pixel buffers between calls. A buffer too small for
// the requested size is dropped and a larger one allocated.
type surfacePool struct {
	pool sync.Pool
}

func (p *surfacePool) acquire(width, height int) *Surface {
	need := width * height * 4
	var pix []uint8
	if v := p.pool.Get(); v != nil {
		buf := v.(*[]uint8)
		if cap(*buf) >= need {
			pix = (*buf)[:need]
		}
	}
	if pix == nil {
		pix = make([]uint8, need)
	}
	img := &image.RGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	fill(img, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	return &Surface{img: img}
}

func (p *surfacePool) release(s *Surface) {
	if s == nil || s.img == nil {
		return
	}
	pix := s.img.Pix[:0]
	s.img = nil
	p.pool.Put(&pix)
}

func fill(img *image.RGBA, c color.RGBA) {
	if len(img.Pix) == 0 {
		return
	}
	row := img.Pix[:4]
	row[0], row[1], row[2], row[3] = c.R, c.G, c.B, c.A
	// doubling copy
	for filled := 4; filled < len(img.Pix); filled *= 2 {
		copy(img.Pix[filled:], img.Pix[:filled])
	}
}

// snapshot copies the top height rows of the surface into a new image that
// outlives the surface.
func (s *Surface) snapshot(height int) *image.RGBA {
	b := s.img.Bounds()
	if height > b.Dy() {
		height = b.Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), height))
	copy(out.Pix, s.img.Pix[:height*s.img.Stride])
	return out
}
