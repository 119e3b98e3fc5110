package deck

import (
	"errors"

	imagepkg "github.com/youruser/cardinserts/internal/image"
)

// ErrEmptyInput is returned when there is nothing to lay out.
var ErrEmptyInput = errors.New("no insert images found to place into the document")

// Cell is an occupied grid slot.
type Cell struct {
	Placement
	Artifact imagepkg.Artifact `json:"artifact"`
}

// Page is one sheet. Cells are in fill order; a trailing page may hold
// fewer than Config.PerPage cells.
type Page struct {
	Number int    `json:"number"`
	Cells  []Cell `json:"cells"`
}

// Document is the laid out set of pages.
type Document struct {
	Config Config `json:"config"`
	Title  string `json:"title"`
	Pages  []Page `json:"pages"`
}

// Cards is the number of placed inserts.
func (d *Document) Cards() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Cells)
	}
	return n
}

// Layout assigns artifacts to cells in the order given, filling each page
// row by row from the top-left.
func Layout(artifacts []imagepkg.Artifact, cfg Config) (*Document, error) {
	if len(artifacts) == 0 {
		return nil, ErrEmptyInput
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	doc := &Document{Config: cfg, Pages: make([]Page, 0, PageCount(len(artifacts), cfg))}
	cur := Page{Number: 1}
	count := 0
	for _, a := range artifacts {
		cur.Cells = append(cur.Cells, Cell{Placement: Place(count, cfg), Artifact: a})
		count++
		if count%cfg.PerPage() == 0 {
			doc.Pages = append(doc.Pages, cur)
			cur = Page{Number: len(doc.Pages) + 1}
		}
	}
	if len(cur.Cells) > 0 {
		doc.Pages = append(doc.Pages, cur)
	}
	return doc, nil
}
