package cards

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/youruser/cardinserts/internal/util"
)

// LoadCSV reads a listing exported as CSV with a Number,ImageURL header.
// Rows without an image URL are skipped; a missing or unparsable Number
// falls back to the row position.
func LoadCSV(path string) ([]Record, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols["ImageURL"]; !ok {
		return nil, fmt.Errorf("csv %s: missing ImageURL column", path)
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	seen := map[int]bool{}
	out := []Record{}
	for i, row := range rows[1:] {
		u := get(row, "ImageURL")
		if u == "" {
			continue
		}
		idx := i + 1
		if n, err := strconv.Atoi(get(row, "Number")); err == nil && n > 0 {
			idx = n
		}
		if seen[idx] {
			return nil, fmt.Errorf("csv %s: duplicate card number %d", path, idx)
		}
		seen[idx] = true
		out = append(out, Record{Index: idx, ImageURL: u})
	}
	if len(out) == 0 {
		return nil, ErrSourceListEmpty
	}
	return out, nil
}

// CSVLister lists the records of a CSV file.
type CSVLister struct {
	Path string
}

func (l CSVLister) List(_ context.Context) ([]Record, error) {
	return LoadCSV(l.Path)
}

// WriteCSV saves records in the Number,ImageURL layout LoadCSV reads.
// Numbers are zero-padded to width.
func WriteCSV(path string, records []Record, width int) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Number", "ImageURL"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write([]string{r.Label(width), r.ImageURL}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
