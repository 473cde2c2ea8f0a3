// Package export renders a snapshot as a downloadable workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/adrecon/internal/model"
)

// SheetName is the worksheet the snapshot is written to.
const SheetName = "data"

// Filename returns the download name for an export made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("ad_data_%s.xlsx", t.Format("20060102_150405"))
}

// WriteXLSX writes every record of s, one column per snapshot column, with a
// header row. Null values are left as empty cells.
func WriteXLSX(w io.Writer, s *model.Snapshot) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, c := range s.Columns {
		header.AddCell().SetString(c.Name)
	}

	for i := range s.Records {
		r := &s.Records[i]
		row := sheet.AddRow()
		for _, c := range s.Columns {
			cell := row.AddCell()
			switch v := r.Value(c.Name).(type) {
			case float64:
				cell.SetFloat(v)
			case string:
				cell.SetString(v)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}
