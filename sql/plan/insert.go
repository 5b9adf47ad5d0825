package plan

import (
	"fmt"
	"io"
	"strings"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrInsertIntoNotSupported is returned when the table can't be inserted
// into.
var ErrInsertIntoNotSupported = errors.NewKind("table %s does not support inserts")

// InsertInto is a node describing the insertion into some table.
type InsertInto struct {
	BinaryNode
	Columns []string
}

// NewInsertInto creates an InsertInto node. An empty column list inserts
// positionally; a non-empty one must name every table column exactly
// once, in any order.
func NewInsertInto(dst, src sql.Node, columns []string) *InsertInto {
	return &InsertInto{
		BinaryNode: BinaryNode{Left: dst, Right: src},
		Columns:    columns,
	}
}

// Schema implements the Node interface.
func (p *InsertInto) Schema() sql.Schema {
	return sql.Schema{{Name: "updated", Type: sql.Integer}}
}

// Execute inserts the rows in the table and returns how many were
// inserted.
func (p *InsertInto) Execute(ctx *sql.Context) (int, error) {
	rt, err := resolvedTable(p.Left)
	if err != nil {
		return 0, err
	}

	inserter, ok := rt.Table.(sql.Inserter)
	if !ok {
		return 0, ErrInsertIntoNotSupported.New(rt.Name())
	}

	schema := rt.Table.Schema()
	positions, err := insertPositions(schema, p.Columns)
	if err != nil {
		return 0, err
	}

	iter, err := p.Right.RowIter(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for {
		row, err := iter.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			_ = iter.Close()
			return count, err
		}

		if len(row) != len(schema) {
			_ = iter.Close()
			return count, sql.ErrColumnCountMismatch.New(fmt.Sprintf(
				"expected %d values, got %d", len(schema), len(row),
			))
		}

		full := make(sql.Row, len(schema))
		for i, v := range row {
			full[positions[i]] = v
		}

		for i, col := range schema {
			if col.Type == nil {
				continue
			}

			converted, err := col.Type.Convert(full[i])
			if err != nil {
				_ = iter.Close()
				return count, err
			}
			full[i] = converted
		}

		if err := inserter.Insert(full); err != nil {
			_ = iter.Close()
			return count, err
		}

		count++
	}

	if err := iter.Close(); err != nil {
		return count, err
	}

	if count > 0 {
		markDirty(rt.Table)
	}

	return count, nil
}

// RowIter implements the Node interface.
func (p *InsertInto) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	updated, err := p.Execute(ctx)
	if err != nil {
		return nil, err
	}

	return sql.RowsToRowIter(sql.NewRow(sql.NewInteger(int64(updated)))), nil
}

// TransformUp implements the Transformable interface.
func (p *InsertInto) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	left, err := p.Left.TransformUp(f)
	if err != nil {
		return nil, err
	}

	right, err := p.Right.TransformUp(f)
	if err != nil {
		return nil, err
	}

	return f(NewInsertInto(left, right, p.Columns))
}

// TransformExpressionsUp implements the Transformable interface.
func (p *InsertInto) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	left, err := p.Left.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	right, err := p.Right.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewInsertInto(left, right, p.Columns), nil
}

func (p *InsertInto) String() string {
	pr := sql.NewTreePrinter()
	_ = pr.WriteNode("Insert(%s)", strings.Join(p.Columns, ", "))
	_ = pr.WriteChildren(p.Left.String(), p.Right.String())
	return pr.String()
}

// insertPositions maps each incoming value index to the table column it
// lands in. Without a column list the mapping is the identity; with one,
// it must cover every column of the table exactly once.
func insertPositions(schema sql.Schema, columns []string) ([]int, error) {
	positions := make([]int, len(schema))
	if len(columns) == 0 {
		for i := range schema {
			positions[i] = i
		}
		return positions, nil
	}

	if len(columns) != len(schema) {
		return nil, sql.ErrColumnCountMismatch.New(fmt.Sprintf(
			"the column list must name all %d table columns, got %d",
			len(schema), len(columns),
		))
	}

	seen := make(map[int]struct{}, len(columns))
	for i, name := range columns {
		idx := schema.IndexOf(name, "")
		if idx < 0 {
			return nil, sql.ErrColumnNotFound.New(name)
		}

		if _, ok := seen[idx]; ok {
			return nil, sql.ErrColumnCountMismatch.New(fmt.Sprintf(
				"column %q named more than once", name,
			))
		}

		seen[idx] = struct{}{}
		positions[i] = idx
	}

	return positions, nil
}

func resolvedTable(node sql.Node) (*ResolvedTable, error) {
	rt, ok := node.(*ResolvedTable)
	if !ok {
		return nil, ErrUnresolvedTable.New(node)
	}
	return rt, nil
}

func markDirty(t sql.Table) {
	if dt, ok := t.(sql.DirtyTracker); ok {
		dt.MarkDirty()
	}
}
