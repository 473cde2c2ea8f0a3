package reconcile

import (
	"go.uber.org/zap"

	"github.com/sells-group/adrecon/internal/model"
)

// MergeStats summarizes a merge.
type MergeStats struct {
	AgencyRows  int
	BackendRows int
	OutputRows  int
	Matched     int
	Unmatched   int
	// DuplicateKeys counts (plan id, date) keys carried by more than one
	// backend row. Each such key multiplies its agency rows.
	DuplicateKeys int
}

type mergeKey struct {
	planID string
	date   string
}

func keyOf(r Row) (mergeKey, bool) {
	date := r[model.ColDate]
	if date == nil {
		return mergeKey{}, false
	}
	return mergeKey{planID: r.String(model.ColPlanID), date: *date}, true
}

// Merge left-joins agency to backend on (plan id, date). Every agency row
// survives; rows without a match keep null backend columns. A backend
// column whose name the agency table already defines is renamed with
// model.BackendSuffix. Rows with a null date never match. Duplicate keys are
// not collapsed.
func Merge(agency, backend *Table) (*Table, MergeStats) {
	stats := MergeStats{AgencyRows: agency.Len(), BackendRows: backend.Len()}

	out := &Table{Columns: append([]string{}, agency.Columns...)}
	if backend == nil {
		out.Rows = make([]Row, len(agency.Rows))
		for i, r := range agency.Rows {
			out.Rows[i] = r.clone()
		}
		stats.OutputRows = len(out.Rows)
		stats.Unmatched = len(out.Rows)
		return out, stats
	}

	// backend column -> output column
	rename := make(map[string]string)
	var backendCols []string
	for _, c := range backend.Columns {
		if c == model.ColPlanID || c == model.ColDate {
			continue
		}
		name := c
		if agency.Has(c) {
			name = c + model.BackendSuffix
		}
		rename[c] = name
		backendCols = append(backendCols, c)
		out.AddColumn(name)
	}

	index := make(map[mergeKey][]Row)
	for _, r := range backend.Rows {
		k, ok := keyOf(r)
		if !ok {
			continue
		}
		index[k] = append(index[k], r)
	}
	for _, rows := range index {
		if len(rows) > 1 {
			stats.DuplicateKeys++
		}
	}

	out.Rows = make([]Row, 0, len(agency.Rows))
	for _, a := range agency.Rows {
		var matches []Row
		if k, ok := keyOf(a); ok {
			matches = index[k]
		}
		if len(matches) == 0 {
			row := a.clone()
			for _, c := range backendCols {
				row[rename[c]] = nil
			}
			out.Rows = append(out.Rows, row)
			stats.Unmatched++
			continue
		}
		stats.Matched++
		for _, b := range matches {
			row := a.clone()
			for _, c := range backendCols {
				row[rename[c]] = b[c]
			}
			out.Rows = append(out.Rows, row)
		}
	}
	stats.OutputRows = len(out.Rows)

	if stats.DuplicateKeys > 0 {
		zap.L().Warn("reconcile: duplicate backend merge keys",
			zap.Int("keys", stats.DuplicateKeys),
			zap.Int("agency_rows", stats.AgencyRows),
			zap.Int("output_rows", stats.OutputRows),
		)
	}
	return out, stats
}
