package fetcher

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of leading rows to skip
	SkipBlank  bool   // drop rows whose cells are all blank
}

// ReadXLSX reads one worksheet of an XLSX file and returns all rows as
// string slices. Cells carry their stored values, not Excel's display text.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for i, row := range sheet.Rows {
		if i < opts.SkipRows || row == nil {
			continue
		}
		cells := rowToStrings(row, f.Date1904)
		if opts.SkipBlank && isBlank(cells) {
			continue
		}
		rows = append(rows, cells)
	}

	return rows, nil
}

// SheetNames lists the worksheets of an XLSX file in workbook order.
func SheetNames(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	names := make([]string, len(f.Sheets))
	for i, s := range f.Sheets {
		names[i] = s.Name
	}
	return names, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row, date1904 bool) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cellText(cell, date1904)
	}
	return cells
}

// cellText returns the stored value of a cell rather than its display text.
// Numeric cells come back in plain decimal notation, date-formatted cells as
// ISO dates (with a time only when one is set), and percent-formatted cells
// as "12.5%" so they read the same as percentages typed as text.
func cellText(cell *xlsx.Cell, date1904 bool) string {
	if cell.Type() != xlsx.CellTypeNumeric {
		return cell.Value
	}
	f, err := cell.Float()
	if err != nil {
		return cell.Value
	}
	if cell.IsTime() {
		t, err := cell.GetTime(date1904)
		if err != nil {
			return cell.Value
		}
		t = t.Round(time.Second)
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	}
	if isPercentFormat(cell.GetNumberFormat()) {
		pct := math.Round(f*100*1e9) / 1e9
		return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// isPercentFormat reports whether format has an unquoted, unescaped "%".
func isPercentFormat(format string) bool {
	quoted := false
	for i := 0; i < len(format); i++ {
		switch format[i] {
		case '"':
			quoted = !quoted
		case '\\':
			i++
		case '%':
			if !quoted {
				return true
			}
		}
	}
	return false
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
