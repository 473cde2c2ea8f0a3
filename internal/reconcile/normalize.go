package reconcile

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adrecon/internal/fetcher"
	"github.com/sells-group/adrecon/internal/model"
)

// ReadSource reads the spec's worksheet from path and normalizes it. Any
// failure to open the file, find the sheet or locate the join keys is a
// SourceError.
func ReadSource(spec SourceSpec, path string) (*Table, error) {
	raw, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{
		SheetName: spec.Sheet,
		SkipBlank: true,
	})
	if err != nil {
		return nil, &SourceError{Kind: spec.Kind, Path: path, Err: withSheetNames(err, path)}
	}

	t, err := Normalize(spec, raw)
	if err != nil {
		return nil, &SourceError{Kind: spec.Kind, Path: path, Err: err}
	}

	zap.L().Info("reconcile: source read",
		zap.String("source", string(spec.Kind)),
		zap.String("sheet", spec.Sheet),
		zap.Int("rows", t.Len()),
	)
	return t, nil
}

// withSheetNames adds the workbook's worksheet names to err when the file
// opens but the expected sheet was not among them.
func withSheetNames(err error, path string) error {
	names, nerr := fetcher.SheetNames(path)
	if nerr != nil {
		return err
	}
	return eris.Wrapf(err, "available sheets: %s", strings.Join(names, ", "))
}

// Normalize renames the header row of raw through the spec's field map and
// builds a table of the remaining rows.
//
// Agency sources are projected onto AgencyColumns: absent canonical columns
// are filled with nulls, unmapped headers are dropped, and every row is
// tagged with the agency. Sources with Passthrough keep unmapped headers and
// must carry both join keys.
func Normalize(spec SourceSpec, raw [][]string) (*Table, error) {
	var header []string
	if len(raw) > 0 {
		header = raw[0]
	}

	// position of each canonical column in the raw row; first header wins
	pos := make(map[string]int)
	var order []string
	for i, h := range header {
		name, ok := spec.Fields.Lookup(h)
		if !ok {
			if !spec.Passthrough {
				continue
			}
			name = foldHeader(h)
			if name == "" {
				continue
			}
		}
		if _, seen := pos[name]; seen {
			continue
		}
		pos[name] = i
		order = append(order, name)
	}

	t := &Table{}
	if spec.Passthrough {
		for _, key := range []string{model.ColPlanID, model.ColDate} {
			if _, ok := pos[key]; !ok {
				return nil, eris.Errorf("reconcile: sheet %q has no %s column", spec.Sheet, key)
			}
		}
		t.Columns = order
	} else {
		t.Columns = append(append([]string{}, AgencyColumns...), model.ColAgentSource)
	}

	if len(raw) < 2 {
		return t, nil
	}

	t.Rows = make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(Row, len(t.Columns))
		for _, col := range t.Columns {
			i, ok := pos[col]
			if !ok || i >= len(cells) {
				row[col] = nil
				continue
			}
			row[col] = cellValue(cells[i])
		}
		if spec.Agent != "" {
			row[model.ColAgentSource] = model.Ptr(string(spec.Agent))
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// cellValue maps an empty cell to null.
func cellValue(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
