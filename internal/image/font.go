package imagepkg

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// Font is a parsed typeface at a fixed point size. It is safe for concurrent
// use; each caller draws with its own face from Face.
type Font struct {
	ttf  *truetype.Font
	Size float64
	Name string
}

// LoadFont parses the font file at path. An empty path or an unusable file
// falls back to the bundled Go Bold typeface; the returned error reports why
// the fallback was taken and is nil when path loaded or was empty.
func LoadFont(path string, size float64) (*Font, error) {
	if path != "" {
		f, err := parseFontFile(path, size)
		if err == nil {
			return f, nil
		}
		return DefaultFont(size), err
	}
	return DefaultFont(size), nil
}

// DefaultFont returns the bundled Go Bold typeface.
func DefaultFont(size float64) *Font {
	ttf, err := truetype.Parse(gobold.TTF)
	if err != nil {
		panic("gobold: " + err.Error())
	}
	return &Font{ttf: ttf, Size: size, Name: "Go Bold"}
}

func parseFontFile(path string, size float64) (*Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	ttf, err := truetype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return &Font{ttf: ttf, Size: size, Name: path}, nil
}

// Face returns a new face. Faces cache glyphs and must not be shared
// between goroutines.
func (f *Font) Face() font.Face {
	return truetype.NewFace(f.ttf, &truetype.Options{
		Size:    f.Size,
		Hinting: font.HintingFull,
	})
}
