package table

import (
	"sort"
)

// Row is one record: column name to scalar value (float64, string, bool or nil).
// A key that is absent from the map is treated as missing.
type Row map[string]any

// Table is an ordered sequence of rows sharing a logical column set.
type Table struct {
	// Columns is the union of keys across all rows in first-seen order.
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// New builds a table from rows. Keys of each row are visited in sorted order
// because Go maps carry no insertion order; use NewWithColumns when the source
// order is known (CSV header, ordered JSON).
func New(rows []Row) *Table {
	return NewWithColumns(nil, rows)
}

// NewWithColumns builds a table whose column order starts with cols and is
// extended with any further keys found in rows.
func NewWithColumns(cols []string, rows []Row) *Table {
	t := &Table{Rows: rows}
	t.Columns = unionColumns(cols, rows)
	return t
}

func unionColumns(seed []string, rows []Row) []string {
	seen := make(map[string]bool, len(seed))
	out := make([]string, 0, len(seed))
	for _, c := range seed {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		var extra []string
		for k := range r {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns the column's cells in row order; absent keys yield nil.
func (t *Table) Values(col string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		if r != nil {
			out[i] = r[col]
		}
	}
	return out
}

// Head returns the column's cells for the first n rows (fewer if the table is shorter).
func (t *Table) Head(col string, n int) []any {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([]any, n)
	for i := 0; i < n; i++ {
		if r := t.Rows[i]; r != nil {
			out[i] = r[col]
		}
	}
	return out
}

// Clone returns a deep copy of the table (rows are copied, scalar values shared).
func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.Clone()
	}
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	return &Table{Columns: cols, Rows: rows}
}

// WithRows returns a new table that keeps t's column order and recomputes the
// union over the given rows. Columns no longer present in any row are dropped.
func (t *Table) WithRows(rows []Row) *Table {
	present := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			present[k] = true
		}
	}
	var seed []string
	for _, c := range t.Columns {
		if present[c] {
			seed = append(seed, c)
		}
	}
	return NewWithColumns(seed, rows)
}

// Clone copies the row map.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
