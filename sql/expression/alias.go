package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// Alias is a node that gives a name to an expression.
type Alias struct {
	UnaryExpression
	name string
}

// NewAlias returns a new Alias node.
func NewAlias(child sql.Expression, name string) *Alias {
	return &Alias{UnaryExpression{child}, name}
}

// Name returns the alias name.
func (e *Alias) Name() string { return e.name }

// Eval implements the Expression interface.
func (e *Alias) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return e.Child.Eval(ctx, row)
}

// TransformUp implements the Expression interface.
func (e *Alias) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := e.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewAlias(child, e.name))
}

// String implements the fmt.Stringer interface.
func (e *Alias) String() string {
	return fmt.Sprintf("%s AS %s", e.Child, e.name)
}
