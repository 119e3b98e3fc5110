package cards

import "sort"

// FilterOptions selects a subset of a listing by index. Zero bounds are open.
type FilterOptions struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (o FilterOptions) match(index int) bool {
	if o.From > 0 && index < o.From {
		return false
	}
	if o.To > 0 && index > o.To {
		return false
	}
	return true
}

// Filter keeps the records inside the range, sorted by index. Indices are
// never renumbered so a partial run reproduces the same labels.
func Filter(records []Record, opt FilterOptions) []Record {
	var out []Record
	for _, r := range records {
		if !opt.match(r.Index) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
