package table

import (
	"fmt"
)

// Table is a rectangular dataset of string cells with a named header.
// Every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// FormatError is returned when input cannot be read as a table
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed table: %s", e.Reason)
}

// New validates header and rows and returns a table
func New(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, &FormatError{Reason: "no header row"}
	}

	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, dup := seen[name]; dup {
			return nil, &FormatError{Reason: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = struct{}{}
	}

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, &FormatError{Reason: fmt.Sprintf("row %d has %d fields, expected %d", i+1, len(row), len(header))}
		}
	}

	return &Table{Header: header, Rows: rows}, nil
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of a column, or -1
func (t *Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table contains the column
func (t *Table) Has(name string) bool {
	return t.Index(name) >= 0
}

// Column returns a copy of the values of a column
func (t *Table) Column(name string) ([]string, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Select returns a new table holding exactly the given columns in the given order.
// Cell values are not altered.
func (t *Table) Select(columns []string) (*Table, error) {
	indices := make([]int, len(columns))
	for i, name := range columns {
		idx := t.Index(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		indices[i] = idx
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, len(indices))
		for j, idx := range indices {
			out[j] = row[idx]
		}
		rows[i] = out
	}

	header := make([]string, len(columns))
	copy(header, columns)
	return &Table{Header: header, Rows: rows}, nil
}

// Drop returns a new table without the given columns. Unknown names are ignored.
func (t *Table) Drop(columns ...string) *Table {
	drop := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		drop[c] = struct{}{}
	}

	keep := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if _, ok := drop[h]; !ok {
			keep = append(keep, h)
		}
	}

	// every kept name exists, Select cannot fail
	out, _ := t.Select(keep)
	return out
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	header := make([]string, len(t.Header))
	copy(header, t.Header)
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		rows[i] = r
	}
	return &Table{Header: header, Rows: rows}
}

// SetColumn appends a column, or overwrites it in place when it already exists
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.Rows))
	}

	if idx := t.Index(name); idx >= 0 {
		for i := range t.Rows {
			t.Rows[i][idx] = values[i]
		}
		return nil
	}

	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Head returns a table with at most n leading rows
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	if n < 0 {
		n = 0
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n]}
}
