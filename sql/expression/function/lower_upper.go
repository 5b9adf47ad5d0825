package function

import (
	"fmt"
	"strings"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// Lower is a function that converts a string to lowercase.
type Lower struct {
	expression.UnaryExpression
}

// NewLower creates a new Lower expression.
func NewLower(e sql.Expression) sql.Expression {
	return &Lower{expression.UnaryExpression{Child: e}}
}

// Eval implements the Expression interface.
func (l *Lower) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	s, null, err := stringArg(ctx, row, l.Child, "LOWER")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewString(strings.ToLower(s)), nil
}

// TransformUp implements the Expression interface.
func (l *Lower) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := l.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewLower(child))
}

// String implements the fmt.Stringer interface.
func (l *Lower) String() string {
	return fmt.Sprintf("LOWER(%s)", l.Child)
}

// Upper is a function that converts a string to uppercase.
type Upper struct {
	expression.UnaryExpression
}

// NewUpper creates a new Upper expression.
func NewUpper(e sql.Expression) sql.Expression {
	return &Upper{expression.UnaryExpression{Child: e}}
}

// Eval implements the Expression interface.
func (u *Upper) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	s, null, err := stringArg(ctx, row, u.Child, "UPPER")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewString(strings.ToUpper(s)), nil
}

// TransformUp implements the Expression interface.
func (u *Upper) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := u.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewUpper(child))
}

// String implements the fmt.Stringer interface.
func (u *Upper) String() string {
	return fmt.Sprintf("UPPER(%s)", u.Child)
}
