package sheets

import "strings"

// RecordsFromGrid converts a raw grid into header-keyed records. The first
// row is the header; every following row becomes a map from header cell to
// value, with short rows padded by empty strings. The trimmed header is
// returned as well so callers keep the column order.
//
// A duplicate or empty header cell makes the keying ambiguous, so the
// conversion refuses with a *StructuralError instead of guessing.
func RecordsFromGrid(document, tab string, grid [][]string) ([]string, []map[string]string, error) {
	if len(grid) == 0 {
		return nil, nil, nil
	}
	header := make([]string, len(grid[0]))
	seen := make(map[string]struct{}, len(grid[0]))
	for i, h := range grid[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, nil, &StructuralError{Document: document, Tab: tab, Reason: "empty header cell"}
		}
		if _, dup := seen[h]; dup {
			return nil, nil, &StructuralError{Document: document, Tab: tab, Reason: "duplicate header " + h}
		}
		seen[h] = struct{}{}
		header[i] = h
	}
	records := make([]map[string]string, 0, len(grid)-1)
	for _, row := range grid[1:] {
		rec := make(map[string]string, len(header))
		for i, h := range header {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			rec[h] = v
		}
		records = append(records, rec)
	}
	return header, records, nil
}
