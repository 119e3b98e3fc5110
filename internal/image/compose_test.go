package imagepkg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/youruser/cardinserts/internal/cards"
)

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

var testFont = DefaultFont(144)

func TestCompose_Geometry(t *testing.T) {
	cfg := DefaultConfig()
	// Landscape source: stretched, never letterboxed.
	data := solidPNG(t, 300, 120, color.NRGBA{R: 200, G: 30, B: 30, A: 255})

	ins, err := Compose(cards.Record{Index: 7}, data, testFont, cfg)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if ins.Label != "007" || ins.Index != 7 {
		t.Errorf("label = %q index = %d", ins.Label, ins.Index)
	}
	if b := ins.Image.Bounds(); b.Dx() != 750 || b.Dy() != 1050 {
		t.Fatalf("size = %v, want 750x1050", b)
	}

	// Far from the label the blurred artwork shows through unchanged.
	c := ins.Image.NRGBAAt(375, 150)
	if c.A != 255 || absDiff(c.R, 200) > 2 || absDiff(c.G, 30) > 2 || absDiff(c.B, 30) > 2 {
		t.Errorf("background pixel = %+v", c)
	}
}

func TestCompose_LabelHasFillAndStroke(t *testing.T) {
	cfg := DefaultConfig()
	data := solidPNG(t, 75, 105, color.NRGBA{R: 90, G: 120, B: 160, A: 255})

	ins, err := Compose(cards.Record{Index: 123}, data, testFont, cfg)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	face := testFont.Face()
	defer face.Close()
	box := CenterLabel(face, "123", cfg.Width, cfg.Height)

	var white, black int
	for y := box.Ink.Min.Y - 3; y < box.Ink.Max.Y+3; y++ {
		for x := box.Ink.Min.X - 3; x < box.Ink.Max.X+3; x++ {
			c := ins.Image.NRGBAAt(x, y)
			switch {
			case c.R > 245 && c.G > 245 && c.B > 245:
				white++
			case c.R < 10 && c.G < 10 && c.B < 10:
				black++
			}
		}
	}
	if white == 0 || black == 0 {
		t.Errorf("label pixels: white=%d black=%d, want both > 0", white, black)
	}
	// Nothing is drawn well outside the ink box.
	if c := ins.Image.NRGBAAt(box.Ink.Min.X-20, box.Ink.Min.Y-20); c.R < 60 || c.R > 120 {
		t.Errorf("pixel outside label = %+v", c)
	}
}

func TestCompose_DropsSourceAlpha(t *testing.T) {
	data := solidPNG(t, 40, 40, color.NRGBA{R: 0, G: 0, B: 255, A: 0})

	ins, err := Compose(cards.Record{Index: 1}, data, testFont, DefaultConfig())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	c := ins.Image.NRGBAAt(375, 100)
	if c.A != 255 || c.B < 250 || c.R > 5 {
		t.Errorf("pixel = %+v, want opaque blue", c)
	}
}

func TestCompose_DecodeError(t *testing.T) {
	_, err := Compose(cards.Record{Index: 1}, []byte("<html>not an image</html>"), testFont, DefaultConfig())
	if !errors.Is(err, ErrImageDecode) {
		t.Fatalf("err = %v, want ErrImageDecode", err)
	}
}

func TestCompose_OversizedImageRejected(t *testing.T) {
	data := solidPNG(t, 4, 4, color.NRGBA{R: 1, A: 255})
	// Rewrite the IHDR dimensions to 30000x30000 and fix up its CRC.
	binary.BigEndian.PutUint32(data[16:20], 30000)
	binary.BigEndian.PutUint32(data[20:24], 30000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	_, err := Compose(cards.Record{Index: 1}, data, testFont, DefaultConfig())
	if !errors.Is(err, ErrImageDecode) {
		t.Fatalf("err = %v, want ErrImageDecode", err)
	}
}

func TestCompose_MaskInvariant(t *testing.T) {
	cfg := DefaultConfig()
	data := solidPNG(t, 10, 10, color.NRGBA{R: 10, G: 200, B: 10, A: 255})
	ins, err := Compose(cards.Record{Index: 42}, data, testFont, cfg)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	checkRoundedAlpha(t, func(x, y int) uint8 { return ins.Image.NRGBAAt(x, y).A }, cfg.Width, cfg.Height, cfg.CornerRadius)
}

func TestRoundedMask(t *testing.T) {
	m := RoundedMask(200, 300, 25)
	checkRoundedAlpha(t, func(x, y int) uint8 { return m.AlphaAt(x, y).A }, 200, 300, 25)
}

// checkRoundedAlpha asserts alpha is 0 outside the rounded rectangle and 255
// inside it, ignoring a 1.5px band around the outline.
func checkRoundedAlpha(t *testing.T, alpha func(x, y int) uint8, w, h int, r float64) {
	t.Helper()
	const band = 1.5
	bad := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			// Nearest arc centre for corner pixels.
			cx, cy := math.NaN(), math.NaN()
			switch {
			case px < r:
				cx = r
			case px > float64(w)-r:
				cx = float64(w) - r
			}
			switch {
			case py < r:
				cy = r
			case py > float64(h)-r:
				cy = float64(h) - r
			}

			a := alpha(x, y)
			if !math.IsNaN(cx) && !math.IsNaN(cy) {
				d := math.Hypot(px-cx, py-cy)
				if d > r+band && a != 0 {
					bad++
				}
				if d < r-band && a != 255 {
					bad++
				}
				continue
			}
			if x >= 1 && y >= 1 && x < w-1 && y < h-1 && a != 255 {
				bad++
			}
		}
	}
	if bad > 0 {
		t.Errorf("%d pixels violate the rounded mask", bad)
	}
	if a := alpha(0, 0); a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if a := alpha(w/2, h/2); a != 255 {
		t.Errorf("centre alpha = %d, want 255", a)
	}
}

func TestCenterLabel_NonNegative(t *testing.T) {
	face := testFont.Face()
	defer face.Close()
	for i := 1; i <= 999; i++ {
		label := cards.FormatIndex(i, 3)
		box := CenterLabel(face, label, 750, 1050)
		if box.Ink.Min.X < 0 || box.Ink.Min.Y < 0 {
			t.Fatalf("label %s: negative offset %v", label, box.Ink)
		}
		if box.Ink.Max.X > 750 || box.Ink.Max.Y > 1050 {
			t.Fatalf("label %s: ink %v exceeds canvas", label, box.Ink)
		}
	}

	box := CenterLabel(face, "001", 750, 1050)
	cx := float64(box.Ink.Min.X+box.Ink.Max.X) / 2
	cy := float64(box.Ink.Min.Y+box.Ink.Max.Y) / 2
	if math.Abs(cx-375) > 1.5 || math.Abs(cy-525) > 1.5 {
		t.Errorf("ink centre = (%.1f, %.1f), want (375, 525)", cx, cy)
	}
	if box.DotY <= float64(box.Ink.Min.Y) {
		t.Errorf("baseline %.1f should sit below the ink top %d", box.DotY, box.Ink.Min.Y)
	}
}

func TestLoadFont_Fallback(t *testing.T) {
	f, err := LoadFont("/nonexistent/pokemon_solid.ttf", 72)
	if err == nil {
		t.Error("expected error for missing font file")
	}
	if f == nil || f.Name != "Go Bold" {
		t.Fatalf("fallback font = %+v", f)
	}
	if f, err := LoadFont("", 72); err != nil || f.Size != 72 {
		t.Errorf("LoadFont(\"\") = %+v, %v", f, err)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
