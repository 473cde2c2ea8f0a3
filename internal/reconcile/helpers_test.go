package reconcile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, name string, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for sheetName, rows := range sheets {
		sheet, err := f.AddSheet(sheetName)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.Save(path))
	return path
}

func table(columns []string, rows ...[]any) *Table {
	t := &Table{Columns: columns}
	for _, vals := range rows {
		r := make(Row, len(columns))
		for i, c := range columns {
			if i >= len(vals) || vals[i] == nil {
				r[c] = nil
				continue
			}
			s := vals[i].(string)
			r[c] = &s
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// formatted is a numeric fixture cell with an Excel number format.
type formatted struct {
	value  float64
	format string
}

// writeTypedWorkbook writes one sheet whose cells keep their Go types:
// strings, ints, floats, dates and formatted numbers, the way exported
// reports store them.
func writeTypedWorkbook(t *testing.T, name, sheetName string, rows ...[]any) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, vals := range rows {
		row := sheet.AddRow()
		for _, v := range vals {
			cell := row.AddCell()
			switch v := v.(type) {
			case string:
				cell.SetString(v)
			case int:
				cell.SetInt(v)
			case float64:
				cell.SetFloat(v)
			case time.Time:
				cell.SetDateTime(v)
			case formatted:
				cell.SetFloatWithFormat(v.value, v.format)
			default:
				t.Fatalf("unsupported fixture cell %T", v)
			}
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.Save(path))
	return path
}
