package deck

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	imagepkg "github.com/youruser/cardinserts/internal/image"
)

func writeInserts(t *testing.T, n int) []imagepkg.Artifact {
	t.Helper()
	store := imagepkg.Store{Dir: t.TempDir(), DPI: 300}
	var out []imagepkg.Artifact
	for i := 1; i <= n; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, 25, 35))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+3] = uint8(20*i), 255
		}
		img.SetNRGBA(0, 0, color.NRGBA{})
		a, err := store.Save(&imagepkg.Insert{Index: i, Label: cardsLabel(i), Image: img})
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, a)
	}
	return out
}

func cardsLabel(i int) string {
	return string([]byte{'0' + byte(i/100), '0' + byte(i/10%10), '0' + byte(i%10)})
}

func TestDocument_WriteFile(t *testing.T) {
	doc, err := Layout(writeInserts(t, 10), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	doc.Title = "DRI inserts"

	out := filepath.Join(t.TempDir(), "DRI_inserts.pdf")
	if err := doc.WriteFile(out); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", b[:8])
	}
	if !bytes.Contains(b, []byte("/Count 2")) {
		t.Error("expected a two-page document")
	}
	if !bytes.Contains(b, []byte("/SMask")) {
		t.Error("expected inserts to keep their alpha channel")
	}
}

func TestDocument_MissingInsert(t *testing.T) {
	arts := writeInserts(t, 2)
	arts[1].Path = filepath.Join(t.TempDir(), "gone.png")
	doc, err := Layout(arts, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out.pdf")
	err = doc.WriteFile(out)
	if err == nil || !strings.Contains(err.Error(), "gone.png") {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("partial document left on disk")
	}
}
