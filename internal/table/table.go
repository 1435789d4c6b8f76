// Package table holds the column-oriented data model shared by all
// de-identification stages: an ordered list of named columns whose cells
// are optional text values (nil = missing). Stages never mutate a table
// in place; every transformation returns a new value.
package table

import (
	"errors"
	"fmt"
)

// Domain errors for the table package.
var (
	ErrInput = errors.New("invalid input table")
	ErrShape = fmt.Errorf("%w: inconsistent shape", ErrInput)
)

// Column is a named, ordered sequence of optional text cells.
type Column struct {
	Name  string
	Cells []*string
}

// Table is an ordered collection of equal-length columns.
type Table struct {
	cols []Column
}

// New builds a table from columns, validating that names are unique and
// all columns have the same row count.
func New(cols ...Column) (*Table, error) {
	seen := make(map[string]bool, len(cols))
	rows := -1
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("%w: column with empty name", ErrShape)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, c.Name)
		}
		seen[c.Name] = true
		if rows == -1 {
			rows = len(c.Cells)
		} else if len(c.Cells) != rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, c.Name, len(c.Cells), rows)
		}
	}
	return &Table{cols: cloneColumns(cols)}, nil
}

// MustNew is like New but panics on error. For tests and literals.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(fmt.Sprintf("table.New: %v", err))
	}
	return t
}

// Rows returns the row count. An empty table has zero rows.
func (t *Table) Rows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Cells)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]*string, bool) {
	for _, c := range t.cols {
		if c.Name == name {
			return c.Cells, true
		}
	}
	return nil, false
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// DropColumns returns a new table without the named columns. Names that
// do not exist are ignored; removal is idempotent.
func (t *Table) DropColumns(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var kept []Column
	for _, c := range t.cols {
		if !drop[c.Name] {
			kept = append(kept, c)
		}
	}
	return &Table{cols: cloneColumns(kept)}
}

// AppendColumn returns a new table with the column added at the end.
func (t *Table) AppendColumn(name string, cells []*string) (*Table, error) {
	if t.Has(name) {
		return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, name)
	}
	if len(t.cols) > 0 && len(cells) != t.Rows() {
		return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, name, len(cells), t.Rows())
	}
	cols := cloneColumns(t.cols)
	cols = append(cols, Column{Name: name, Cells: cloneCells(cells)})
	return &Table{cols: cols}, nil
}

// ReplaceColumn returns a new table with the named column's cells swapped
// out, keeping its position.
func (t *Table) ReplaceColumn(name string, cells []*string) (*Table, error) {
	if len(cells) != t.Rows() {
		return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, name, len(cells), t.Rows())
	}
	cols := cloneColumns(t.cols)
	for i := range cols {
		if cols[i].Name == name {
			cols[i].Cells = cloneCells(cells)
			return &Table{cols: cols}, nil
		}
	}
	return nil, fmt.Errorf("%w: column %q not present", ErrInput, name)
}

// AppendIntColumn adds a column of integer counts rendered as text cells.
// Redaction passes report their per-row delta counts this way.
func (t *Table) AppendIntColumn(name string, counts []int) (*Table, error) {
	cells := make([]*string, len(counts))
	for i, n := range counts {
		s := fmt.Sprintf("%d", n)
		cells[i] = &s
	}
	return t.AppendColumn(name, cells)
}

// Str returns a pointer to s. Convenience for building cell literals.
func Str(s string) *string { return &s }

func cloneColumns(cols []Column) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{Name: c.Name, Cells: cloneCells(c.Cells)}
	}
	return out
}

func cloneCells(cells []*string) []*string {
	out := make([]*string, len(cells))
	copy(out, cells)
	return out
}
