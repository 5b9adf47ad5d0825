// Package filetable implements tables loaded from delimited text files.
// Tables live entirely in memory; mutations mark them dirty so the
// session can write back only the files that actually changed.
package filetable

import (
	"fmt"
	"io"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

var (
	_ sql.Table        = (*Table)(nil)
	_ sql.Inserter     = (*Table)(nil)
	_ sql.Updater      = (*Table)(nil)
	_ sql.Deleter      = (*Table)(nil)
	_ sql.DirtyTracker = (*Table)(nil)
)

var (
	// ErrDuplicateColumn is returned when a table declares the same column
	// name twice.
	ErrDuplicateColumn = errors.NewKind("duplicate column %q in table %s")

	// ErrRowOutOfRange is returned when a mutation addresses a row index
	// the table does not have.
	ErrRowOutOfRange = errors.NewKind("row %d out of range, table %s has %d rows")
)

// Origin describes where a table came from and how to write it back.
type Origin struct {
	// Path of the backing file. Empty when the table was created without
	// a LOCATION clause and cannot be saved.
	Path string
	// Delimiter separating the fields of the backing file.
	Delimiter rune
	// Header reports whether the backing file carries a header line. A
	// table loaded with synthesized column names writes no header back.
	Header bool
}

// Table is an in-memory table. Row positions are stable between
// mutations: the index seen while iterating is the index addressed by
// SetRow and RemoveRows.
type Table struct {
	name   string
	schema sql.Schema
	rows   []sql.Row
	dirty  bool
	origin Origin
}

// NewTable creates a new table with the given columns. Column sources
// are overwritten with the table name, so resolved fields always carry
// their owning table. Duplicate column names are rejected.
func NewTable(name string, schema sql.Schema) (*Table, error) {
	seen := make(map[string]struct{}, len(schema))
	owned := make(sql.Schema, len(schema))
	for i, col := range schema {
		if _, ok := seen[col.Name]; ok {
			return nil, ErrDuplicateColumn.New(col.Name, name)
		}
		seen[col.Name] = struct{}{}

		col.Source = name
		owned[i] = col
	}

	return &Table{name: name, schema: owned}, nil
}

// Name implements the Nameable interface.
func (t *Table) Name() string {
	return t.name
}

// Schema implements the sql.Table interface.
func (t *Table) Schema() sql.Schema {
	return t.schema
}

// RowIter implements the sql.Table interface. Rows are yielded in
// storage order.
func (t *Table) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	return &tableIter{rows: t.rows}, nil
}

// Insert implements the sql.Inserter interface.
func (t *Table) Insert(row sql.Row) error {
	return t.AppendRow(row)
}

// AppendRow appends the given row to the table. The row must have
// exactly one value per column.
func (t *Table) AppendRow(row sql.Row) error {
	if len(row) != len(t.schema) {
		return sql.ErrColumnCountMismatch.New(fmt.Sprintf(
			"table %s has %d columns, row has %d values",
			t.name, len(t.schema), len(row),
		))
	}

	t.rows = append(t.rows, row.Copy())
	return nil
}

// SetRow implements the sql.Updater interface.
func (t *Table) SetRow(index int, row sql.Row) error {
	if index < 0 || index >= len(t.rows) {
		return ErrRowOutOfRange.New(index, t.name, len(t.rows))
	}

	if len(row) != len(t.schema) {
		return sql.ErrColumnCountMismatch.New(fmt.Sprintf(
			"table %s has %d columns, row has %d values",
			t.name, len(t.schema), len(row),
		))
	}

	t.rows[index] = row.Copy()
	return nil
}

// RemoveRows implements the sql.Deleter interface. Indices must be
// sorted ascending; they address the rows as they were before any of
// them is removed.
func (t *Table) RemoveRows(indices []int) error {
	removed := 0
	for _, idx := range indices {
		idx -= removed
		if idx < 0 || idx >= len(t.rows) {
			return ErrRowOutOfRange.New(idx+removed, t.name, len(t.rows)+removed)
		}

		t.rows = append(t.rows[:idx], t.rows[idx+1:]...)
		removed++
	}

	return nil
}

// Project returns a new table holding only the named columns, in the
// given order. Unknown names fail with a column-not-found error.
func (t *Table) Project(columns []string) (*Table, error) {
	indices := make([]int, len(columns))
	schema := make(sql.Schema, len(columns))
	for i, name := range columns {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return nil, sql.ErrColumnNotFound.New(name)
		}
		indices[i] = idx
		schema[i] = t.schema[idx]
	}

	projected, err := NewTable(t.name, schema)
	if err != nil {
		return nil, err
	}

	for _, row := range t.rows {
		selected := make(sql.Row, len(indices))
		for i, idx := range indices {
			selected[i] = row[idx]
		}
		projected.rows = append(projected.rows, selected)
	}

	return projected, nil
}

// ColumnIndex returns the position of the named column, or false when
// the table has no such column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.schema {
		if col.Name == name {
			return i, true
		}
	}
	return 0, false
}

// RowCount returns how many rows the table holds.
func (t *Table) RowCount() int {
	return len(t.rows)
}

// MarkDirty implements the sql.DirtyTracker interface.
func (t *Table) MarkDirty() {
	t.dirty = true
}

// ClearDirty flags the table as saved.
func (t *Table) ClearDirty() {
	t.dirty = false
}

// IsDirty implements the sql.DirtyTracker interface.
func (t *Table) IsDirty() bool {
	return t.dirty
}

// Origin returns the storage metadata of the table.
func (t *Table) Origin() Origin {
	return t.origin
}

// SetOrigin replaces the storage metadata of the table.
func (t *Table) SetOrigin(o Origin) {
	t.origin = o
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%s)", t.name)
}

type tableIter struct {
	rows []sql.Row
	pos  int
}

func (i *tableIter) Next() (sql.Row, error) {
	if i.pos >= len(i.rows) {
		return nil, io.EOF
	}

	row := i.rows[i.pos]
	i.pos++
	return row, nil
}

func (i *tableIter) Close() error {
	return nil
}
