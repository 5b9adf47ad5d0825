package sql

import "io"

// Row is a tuple of values.
type Row []Value

// NewRow creates a row from the given values.
func NewRow(values ...Value) Row {
	row := make(Row, len(values))
	copy(row, values)
	return row
}

// Copy creates a new row with the same values.
func (r Row) Copy() Row {
	return NewRow(r...)
}

// Equals reports whether the row has the same values as the given one,
// using value equality cell by cell.
func (r Row) Equals(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i, v := range r {
		if !v.Equals(other[i]) {
			return false
		}
	}
	return true
}

// RowIter is an iterator that produces rows.
type RowIter interface {
	// Next retrieves the next row. It will return io.EOF if it's the last
	// row.
	Next() (Row, error)
	// Close the iterator.
	Close() error
}

// RowIterToRows converts a row iterator to a slice of rows.
func RowIterToRows(i RowIter) ([]Row, error) {
	var rows []Row
	for {
		row, err := i.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			_ = i.Close()
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, i.Close()
}

// NodeToRows converts a node to a slice of rows.
func NodeToRows(ctx *Context, n Node) ([]Row, error) {
	i, err := n.RowIter(ctx)
	if err != nil {
		return nil, err
	}

	return RowIterToRows(i)
}

// RowsToRowIter creates an iterator over the given rows.
func RowsToRowIter(rows ...Row) RowIter {
	return &sliceRowIter{rows: rows}
}

type sliceRowIter struct {
	rows []Row
	idx  int
}

func (i *sliceRowIter) Next() (Row, error) {
	if i.idx >= len(i.rows) {
		return nil, io.EOF
	}

	r := i.rows[i.idx]
	i.idx++
	return r.Copy(), nil
}

func (i *sliceRowIter) Close() error {
	i.rows = nil
	return nil
}
