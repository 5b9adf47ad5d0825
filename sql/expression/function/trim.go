package function

import (
	"fmt"
	"strings"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// Trim is a function that removes leading and trailing whitespace from a
// string.
type Trim struct {
	expression.UnaryExpression
}

// NewTrim creates a new Trim expression.
func NewTrim(e sql.Expression) sql.Expression {
	return &Trim{expression.UnaryExpression{Child: e}}
}

// Eval implements the Expression interface.
func (t *Trim) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	s, null, err := stringArg(ctx, row, t.Child, "TRIM")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewString(strings.TrimSpace(s)), nil
}

// TransformUp implements the Expression interface.
func (t *Trim) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := t.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewTrim(child))
}

// String implements the fmt.Stringer interface.
func (t *Trim) String() string {
	return fmt.Sprintf("TRIM(%s)", t.Child)
}
