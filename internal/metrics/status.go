package metrics

import "sort"

// Count is one labelled counter row, e.g. a status code or a skip reason.
type Count struct {
	Label string
	Count int
}

// SortedCounts converts a label->count map into rows sorted by descending
// count, then by label for stability.
func SortedCounts(counts map[string]int) []Count {
	if len(counts) == 0 {
		return nil
	}
	rows := make([]Count, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, Count{Label: label, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count == rows[j].Count {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].Count > rows[j].Count
	})
	return rows
}
