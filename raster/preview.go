package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail scales src to width pixels, keeping the aspect ratio.
func Thumbnail(src image.Image, width int) image.Image {
	b := src.Bounds()
	if width <= 0 || b.Dx() == 0 || width >= b.Dx() {
		return src
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
