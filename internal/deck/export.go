package deck

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/youruser/cardinserts/internal/util"
)

// Render writes the document as a PDF. Images keep their alpha channel so
// rounded corners survive on the printed page.
func (d *Document) Render(w io.Writer) error {
	cfg := d.Config
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if d.Title != "" {
		pdf.SetTitle(d.Title, true)
	}
	pdf.SetCreator("cardinserts", true)

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	for _, page := range d.Pages {
		pdf.AddPage()
		for _, cell := range page.Cells {
			name := cell.Artifact.Path
			if info := pdf.GetImageInfo(name); info == nil {
				if err := registerImage(pdf, name, opt); err != nil {
					return err
				}
			}
			// fpdf measures y from the top edge.
			top := cfg.PageHeight - cell.Y - cfg.CardHeight
			pdf.ImageOptions(name, cell.X, top, cfg.CardWidth, cfg.CardHeight, false, opt, 0, "")
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("render page %d: %w", page.Number, err)
		}
	}
	return pdf.Output(w)
}

func registerImage(pdf *fpdf.Fpdf, path string, opt fpdf.ImageOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open insert: %w", err)
	}
	defer f.Close()
	pdf.RegisterImageOptionsReader(path, opt, f)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("load insert %s: %w", path, err)
	}
	return nil
}

// WriteFile renders the document to path. Nothing is left at path when
// rendering fails.
func (d *Document) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return err
	}
	return util.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
