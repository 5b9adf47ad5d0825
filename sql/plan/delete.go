package plan

import (
	"io"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrDeleteNotSupported is returned when the table can't delete rows.
var ErrDeleteNotSupported = errors.NewKind("table %s does not support deletes")

// DeleteFrom is a node describing the deletion of the rows of a table
// that match the condition. Positions are snapshotted before anything
// is removed, so the condition never sees a half-deleted table.
type DeleteFrom struct {
	UnaryNode
	// Where is the condition selecting the rows to delete. Nil deletes
	// every row.
	Where sql.Expression
}

// NewDeleteFrom creates a new DeleteFrom node.
func NewDeleteFrom(child sql.Node, where sql.Expression) *DeleteFrom {
	return &DeleteFrom{UnaryNode: UnaryNode{Child: child}, Where: where}
}

// Resolved implements the Resolvable interface.
func (d *DeleteFrom) Resolved() bool {
	return d.Child.Resolved() && (d.Where == nil || d.Where.Resolved())
}

// Schema implements the Node interface.
func (d *DeleteFrom) Schema() sql.Schema {
	return sql.Schema{{Name: "updated", Type: sql.Integer}}
}

// Execute deletes the matching rows and returns how many were removed.
func (d *DeleteFrom) Execute(ctx *sql.Context) (int, error) {
	rt, err := resolvedTable(d.Child)
	if err != nil {
		return 0, err
	}

	deleter, ok := rt.Table.(sql.Deleter)
	if !ok {
		return 0, ErrDeleteNotSupported.New(rt.Name())
	}

	iter, err := rt.Table.RowIter(ctx)
	if err != nil {
		return 0, err
	}

	var indices []int
	for idx := 0; ; idx++ {
		row, err := iter.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			_ = iter.Close()
			return 0, err
		}

		match := true
		if d.Where != nil {
			match, err = conditionIsTrue(ctx, d.Where, row)
			if err != nil {
				_ = iter.Close()
				return 0, err
			}
		}

		if match {
			indices = append(indices, idx)
		}
	}

	if err := iter.Close(); err != nil {
		return 0, err
	}

	if len(indices) == 0 {
		return 0, nil
	}

	if err := deleter.RemoveRows(indices); err != nil {
		return 0, err
	}

	markDirty(rt.Table)
	return len(indices), nil
}

// RowIter implements the Node interface.
func (d *DeleteFrom) RowIter(ctx *sql.Context) (sql.RowIter, error) {
	deleted, err := d.Execute(ctx)
	if err != nil {
		return nil, err
	}

	return sql.RowsToRowIter(sql.NewRow(sql.NewInteger(int64(deleted)))), nil
}

// TransformUp implements the Transformable interface.
func (d *DeleteFrom) TransformUp(f sql.TransformNodeFunc) (sql.Node, error) {
	child, err := d.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewDeleteFrom(child, d.Where))
}

// TransformExpressionsUp implements the Transformable interface.
func (d *DeleteFrom) TransformExpressionsUp(f sql.TransformExprFunc) (sql.Node, error) {
	where := d.Where
	if where != nil {
		var err error
		where, err = where.TransformUp(f)
		if err != nil {
			return nil, err
		}
	}

	child, err := d.Child.TransformExpressionsUp(f)
	if err != nil {
		return nil, err
	}

	return NewDeleteFrom(child, where), nil
}

// Expressions implements the Expressioner interface.
func (d *DeleteFrom) Expressions() []sql.Expression {
	if d.Where == nil {
		return nil
	}
	return []sql.Expression{d.Where}
}

// TransformExpressions implements the Expressioner interface.
func (d *DeleteFrom) TransformExpressions(f sql.TransformExprFunc) (sql.Node, error) {
	where := d.Where
	if where != nil {
		var err error
		where, err = where.TransformUp(f)
		if err != nil {
			return nil, err
		}
	}
	return NewDeleteFrom(d.Child, where), nil
}

func (d *DeleteFrom) String() string {
	pr := sql.NewTreePrinter()
	if d.Where != nil {
		_ = pr.WriteNode("Delete(%s)", d.Where)
	} else {
		_ = pr.WriteNode("Delete")
	}
	_ = pr.WriteChildren(d.Child.String())
	return pr.String()
}
