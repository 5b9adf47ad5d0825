package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// IsNull is an expression that checks whether a value is null.
type IsNull struct {
	UnaryExpression
}

// NewIsNull creates a new IsNull expression.
func NewIsNull(child sql.Expression) *IsNull {
	return &IsNull{UnaryExpression{child}}
}

// Eval implements the Expression interface.
func (e *IsNull) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	v, err := e.Child.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}

	return sql.NewBoolean(v.IsNull()), nil
}

// TransformUp implements the Expression interface.
func (e *IsNull) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := e.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewIsNull(child))
}

// String implements the fmt.Stringer interface.
func (e *IsNull) String() string {
	return fmt.Sprintf("%s IS NULL", e.Child)
}
