package reconcile

import (
	"strings"

	"github.com/sells-group/adrecon/internal/model"
)

const (
	nameDelimiter = "-"
	// agent, slot, bidding, age, targeting, style, benefit, trailing date
	nameSegments = 8
)

// Decompose splits a campaign name into its positional attributes. A name
// with fewer segments leaves the trailing attributes nil; the eighth
// segment (a date already carried by the date column) is discarded. A nil
// name yields empty dimensions.
func Decompose(name *string) model.Dimensions {
	var d model.Dimensions
	if name == nil {
		return d
	}
	parts := strings.SplitN(*name, nameDelimiter, nameSegments)
	for i, col := range model.DimensionColumns {
		if i >= len(parts) {
			break
		}
		d.Set(col, model.Ptr(parts[i]))
	}
	return d
}

// DecomposeTable adds the dimension columns to t, filling them from each
// row's plan name, then canonicalizes them.
func DecomposeTable(t *Table) {
	for _, col := range model.DimensionColumns {
		t.AddColumn(col)
	}
	for _, r := range t.Rows {
		d := Decompose(r[model.ColPlanName])
		for _, col := range model.DimensionColumns {
			r[col] = d.Get(col)
		}
	}
	CanonicalizeDimensions(t)
}
