package cards

import (
	"context"
	"errors"
	"fmt"
)

// ErrSourceListEmpty is returned when a listing yields no usable records.
var ErrSourceListEmpty = errors.New("no cards/images found in source listing")

// Record is one card of a listing. Index is 1-based and unique within a run.
// Data, when set, is used instead of downloading ImageURL.
type Record struct {
	Index    int    `json:"index"`
	ImageURL string `json:"image_url"`
	Data     []byte `json:"-"`
}

// Label formats the index zero-padded to width digits. Indices wider than
// width are printed in full.
func (r Record) Label(width int) string {
	return FormatIndex(r.Index, width)
}

func FormatIndex(index, width int) string {
	if width < 1 {
		width = 1
	}
	return fmt.Sprintf("%0*d", width, index)
}

// Lister produces the ordered records of a card listing.
type Lister interface {
	List(ctx context.Context) ([]Record, error)
}

// StaticLister returns a fixed record list.
type StaticLister []Record

func (s StaticLister) List(_ context.Context) ([]Record, error) {
	if len(s) == 0 {
		return nil, ErrSourceListEmpty
	}
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}
