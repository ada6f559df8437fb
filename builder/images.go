package builder

import (
	"image"
	"image/draw"

	"github.com/wudi/texkit/ir/semantic"
)

// FromImage converts a Go image.Image to an 8-bit DeviceRGB *semantic.Image.
// Transparent pixels are composited onto white; rendered pages have no alpha channel.
func FromImage(src image.Image) *semantic.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Over)

	pixels := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for x := 0; x < w; x++ {
			offset := x * 4
			pixels = append(pixels, row[offset], row[offset+1], row[offset+2])
		}
	}

	return &semantic.Image{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceRGB",
		BitsPerComponent: 8,
		Data:             pixels,
	}
}
