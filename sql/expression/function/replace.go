package function

import (
	"fmt"
	"strings"

	"github.com/delimsql/delimsql/sql"
)

// Replace is a function that replaces every occurrence of a substring
// with another string.
type Replace struct {
	str  sql.Expression
	from sql.Expression
	to   sql.Expression
}

// NewReplace creates a new Replace expression.
func NewReplace(str, from, to sql.Expression) sql.Expression {
	return &Replace{str, from, to}
}

// Resolved implements the Expression interface.
func (r *Replace) Resolved() bool {
	return r.str.Resolved() && r.from.Resolved() && r.to.Resolved()
}

// Children implements the Expression interface.
func (r *Replace) Children() []sql.Expression {
	return []sql.Expression{r.str, r.from, r.to}
}

// Eval implements the Expression interface.
func (r *Replace) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	str, null, err := stringArg(ctx, row, r.str, "REPLACE")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}

	from, null, err := stringArg(ctx, row, r.from, "REPLACE")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, sql.ErrTypeMismatch.New("REPLACE expects a STRING argument, got NULL")
	}

	to, null, err := stringArg(ctx, row, r.to, "REPLACE")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, sql.ErrTypeMismatch.New("REPLACE expects a STRING argument, got NULL")
	}

	return sql.NewString(strings.Replace(str, from, to, -1)), nil
}

// TransformUp implements the Expression interface.
func (r *Replace) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	str, err := r.str.TransformUp(fn)
	if err != nil {
		return nil, err
	}

	from, err := r.from.TransformUp(fn)
	if err != nil {
		return nil, err
	}

	to, err := r.to.TransformUp(fn)
	if err != nil {
		return nil, err
	}

	return fn(NewReplace(str, from, to))
}

// String implements the fmt.Stringer interface.
func (r *Replace) String() string {
	return fmt.Sprintf("REPLACE(%s, %s, %s)", r.str, r.from, r.to)
}
