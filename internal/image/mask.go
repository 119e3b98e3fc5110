package imagepkg

import (
	"image"

	"github.com/fogleman/gg"
)

// RoundedMask returns a w×h alpha mask, opaque inside a rounded rectangle
// covering the whole area and transparent elsewhere.
func RoundedMask(w, h int, radius float64) *image.Alpha {
	dc := gg.NewContext(w, h)
	dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), radius)
	dc.SetRGB(1, 1, 1)
	dc.Fill()

	src := dc.Image().(*image.RGBA)
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask.Pix[y*mask.Stride+x] = src.Pix[y*src.Stride+x*4+3]
		}
	}
	return mask
}

// applyMask copies the RGB channels of src and takes alpha from mask.
func applyMask(src *image.RGBA, mask *image.Alpha) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := out.PixOffset(x, y)
			out.Pix[di+0] = src.Pix[si+0]
			out.Pix[di+1] = src.Pix[si+1]
			out.Pix[di+2] = src.Pix[si+2]
			out.Pix[di+3] = mask.AlphaAt(x, y).A
		}
	}
	return out
}
