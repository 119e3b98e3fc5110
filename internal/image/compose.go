package imagepkg

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp"

	"github.com/youruser/cardinserts/internal/cards"
)

// ErrImageDecode is returned when fetched bytes are not a supported image.
var ErrImageDecode = errors.New("cannot open image")

// maxSourcePixels caps the decoded size of card artwork. The header is
// checked before any pixel buffer is allocated.
const maxSourcePixels = 40_000_000

// Config controls insert geometry. Sizes are pixels at DPI.
type Config struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	DPI          float64 `json:"dpi"`
	BlurSigma    float64 `json:"blur_sigma"`
	CornerRadius float64 `json:"corner_radius"`
	StrokeWidth  int     `json:"stroke_width"`
	LabelWidth   int     `json:"label_width"`
}

// DefaultConfig is a 2.5"x3.5" card at 300 DPI.
func DefaultConfig() Config {
	return Config{
		Width:        750,
		Height:       1050,
		DPI:          300,
		BlurSigma:    20,
		CornerRadius: 40,
		StrokeWidth:  2,
		LabelWidth:   3,
	}
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("insert size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("insert dpi must be positive, got %v", c.DPI)
	}
	if c.BlurSigma < 0 || c.CornerRadius < 0 || c.StrokeWidth < 0 {
		return errors.New("blur, corner radius and stroke width must not be negative")
	}
	return nil
}

// Insert is a finished card insert, not yet persisted.
type Insert struct {
	Index int
	Label string
	Image *image.NRGBA
}

var (
	labelFill   = color.White
	labelStroke = color.Black
)

// Compose renders the insert for rec from its raw image bytes: the artwork
// stretched to the card size and blurred, the padded index centred on top
// with an outline, and the corners cut to the configured radius.
func Compose(rec cards.Record, data []byte, fnt *Font, cfg Config) (*Insert, error) {
	hdr, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if px := int64(hdr.Width) * int64(hdr.Height); px <= 0 || px > maxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d image is too large", ErrImageDecode, hdr.Width, hdr.Height)
	}
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	w, h := cfg.Width, cfg.Height

	art := imaging.Resize(opaque(imaging.Clone(src)), w, h, imaging.Lanczos)
	blurred := imaging.Blur(art, cfg.BlurSigma)

	canvas := imaging.New(w, h, color.White)
	canvas = imaging.Paste(canvas, blurred, image.Pt(0, 0))

	label := rec.Label(cfg.LabelWidth)
	dc := gg.NewContextForImage(canvas)
	face := fnt.Face()
	defer face.Close()
	dc.SetFontFace(face)
	box := CenterLabel(face, label, w, h)
	drawOutlined(dc, label, box.DotX, box.DotY, cfg.StrokeWidth)

	mask := RoundedMask(w, h, cfg.CornerRadius)
	out := applyMask(dc.Image().(*image.RGBA), mask)
	return &Insert{Index: rec.Index, Label: label, Image: out}, nil
}

// drawOutlined draws text with a stroke of width px by stamping the text in
// the stroke colour at every offset within the stroke disc, then the fill.
func drawOutlined(dc *gg.Context, text string, x, y float64, width int) {
	if width > 0 {
		dc.SetColor(labelStroke)
		r2 := width * width
		for dy := -width; dy <= width; dy++ {
			for dx := -width; dx <= width; dx++ {
				if (dx == 0 && dy == 0) || dx*dx+dy*dy > r2 {
					continue
				}
				dc.DrawString(text, x+float64(dx), y+float64(dy))
			}
		}
	}
	dc.SetColor(labelFill)
	dc.DrawString(text, x, y)
}

// opaque drops the alpha channel, keeping the stored colour of every pixel.
func opaque(img *image.NRGBA) *image.NRGBA {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}
