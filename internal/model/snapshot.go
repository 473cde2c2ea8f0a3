package model

import (
	"encoding/json"
	"time"
)

// Snapshot is the immutable canonical dataset produced by one processing
// run. Queries read it concurrently; nothing mutates it after NewSnapshot.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Columns   []Column  `json:"columns"`
	Records   []Record  `json:"records"`

	index     map[string]int
	populated map[string]bool
}

// NewSnapshot builds a snapshot and its column indexes.
func NewSnapshot(id string, createdAt time.Time, columns []Column, records []Record) *Snapshot {
	s := &Snapshot{
		ID:        id,
		CreatedAt: createdAt,
		Columns:   columns,
		Records:   records,
	}
	s.buildIndex()
	return s
}

func (s *Snapshot) buildIndex() {
	s.index = make(map[string]int, len(s.Columns))
	s.populated = make(map[string]bool, len(s.Columns))
	for i, c := range s.Columns {
		s.index[c.Name] = i
	}
	for i := range s.Records {
		r := &s.Records[i]
		for _, c := range s.Columns {
			if s.populated[c.Name] {
				continue
			}
			if r.Value(c.Name) != nil {
				s.populated[c.Name] = true
			}
		}
	}
}

// UnmarshalJSON restores a persisted snapshot and rebuilds its indexes.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type alias Snapshot
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Snapshot(a)
	s.buildIndex()
	return nil
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.Records)
}

// ColumnNames returns the column names in order.
func (s *Snapshot) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the snapshot defines col.
func (s *Snapshot) Has(col string) bool {
	_, ok := s.index[col]
	return ok
}

// Kind returns the kind of col and whether it exists.
func (s *Snapshot) Kind(col string) (ColumnKind, bool) {
	i, ok := s.index[col]
	if !ok {
		return "", false
	}
	return s.Columns[i].Kind, true
}

// Populated reports whether col exists and holds at least one non-null value.
func (s *Snapshot) Populated(col string) bool {
	return s.populated[col]
}

// Pick resolves a logical metric to the column that carries it: the first
// candidate that exists and is populated, else the first that merely
// exists. Returns "" when no candidate exists.
func (s *Snapshot) Pick(m Metric) string {
	for _, c := range m.Columns {
		if s.Populated(c) {
			return c
		}
	}
	for _, c := range m.Columns {
		if s.Has(c) {
			return c
		}
	}
	return ""
}

// Supports reports whether the snapshot can answer queries about m.
func (s *Snapshot) Supports(m Metric) bool {
	return s.Pick(m) != ""
}

// Row returns r as an ordered field-value mapping over the snapshot columns.
func (s *Snapshot) Row(r *Record) Row {
	values := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		values[i] = r.Value(c.Name)
	}
	return Row{columns: s.ColumnNames(), values: values}
}

// Rows converts records to ordered rows, keeping their order.
func (s *Snapshot) Rows(records []*Record) []Row {
	names := s.ColumnNames()
	rows := make([]Row, len(records))
	for i, r := range records {
		values := make([]any, len(names))
		for j, c := range names {
			values[j] = r.Value(c)
		}
		rows[i] = Row{columns: names, values: values}
	}
	return rows
}

// Preview returns the first n records as ordered rows.
func (s *Snapshot) Preview(n int) []Row {
	if n > len(s.Records) {
		n = len(s.Records)
	}
	recs := make([]*Record, n)
	for i := range n {
		recs[i] = &s.Records[i]
	}
	return s.Rows(recs)
}
