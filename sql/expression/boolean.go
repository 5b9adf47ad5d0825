package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// Not is a node that negates a boolean expression. NOT NULL is NULL.
type Not struct {
	UnaryExpression
}

// NewNot returns a new Not node.
func NewNot(child sql.Expression) *Not {
	return &Not{UnaryExpression{child}}
}

// Eval implements the Expression interface.
func (e *Not) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := e.Child.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}

	b, null, err := asBool(v, "NOT")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewBoolean(!b), nil
}

// TransformUp implements the Expression interface.
func (e *Not) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := e.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewNot(child))
}

// String implements the fmt.Stringer interface.
func (e *Not) String() string {
	return fmt.Sprintf("NOT %s", e.Child)
}
