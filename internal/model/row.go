package model

import (
	"bytes"
	"encoding/json"
)

// Row is an ordered field-value mapping. It marshals to a JSON object whose
// keys keep the snapshot column order.
type Row struct {
	columns []string
	values  []any
}

// Get returns the value stored under col, or nil.
func (r Row) Get(col string) any {
	for i, c := range r.columns {
		if c == col {
			return r.values[i]
		}
	}
	return nil
}

// Columns returns the row's keys in order.
func (r Row) Columns() []string {
	return r.columns
}

// MarshalJSON implements json.Marshaler.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
