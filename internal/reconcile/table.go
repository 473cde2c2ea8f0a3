package reconcile

// Row is one untyped row keyed by canonical column name. A nil value is a
// null cell.
type Row map[string]*string

// Get returns the value of col, or nil.
func (r Row) Get(col string) *string {
	return r[col]
}

// String returns the value of col with null read as "".
func (r Row) String(col string) string {
	if v := r[col]; v != nil {
		return *v
	}
	return ""
}

// Table is an ordered column list plus rows. It is the working shape of a
// source between reading and type coercion.
type Table struct {
	Columns []string
	Rows    []Row
}

// Has reports whether the table defines col.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// AddColumn appends col if the table does not define it yet.
func (t *Table) AddColumn(col string) {
	if !t.Has(col) {
		t.Columns = append(t.Columns, col)
	}
}

// Append adds the rows of other, extending the column list with any columns
// it lacks.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}
	for _, c := range other.Columns {
		t.AddColumn(c)
	}
	t.Rows = append(t.Rows, other.Rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
