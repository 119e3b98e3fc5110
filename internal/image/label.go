package imagepkg

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// LabelBox is the placement of a centred label on a canvas.
type LabelBox struct {
	// Ink is the rectangle covered by glyph outlines once drawn.
	Ink image.Rectangle
	// Dot is the baseline origin to draw the string at.
	DotX, DotY float64
}

// CenterLabel measures text with face and centres its ink box on a w×h
// canvas. Glyph bearings are honoured: the box origin reported by the font
// is subtracted, so a label whose ink does not start at the dot still lands
// in the middle.
func CenterLabel(face font.Face, text string, w, h int) LabelBox {
	b, _ := font.BoundString(face, text)
	minX, minY := fixedToFloat(b.Min.X), fixedToFloat(b.Min.Y)
	tw := fixedToFloat(b.Max.X) - minX
	th := fixedToFloat(b.Max.Y) - minY

	left := (float64(w) - tw) / 2
	top := (float64(h) - th) / 2
	return LabelBox{
		Ink:  image.Rect(int(left), int(top), int(left+tw+0.5), int(top+th+0.5)),
		DotX: left - minX,
		DotY: top - minY,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
