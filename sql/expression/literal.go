package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// Literal represents a literal expression (string, number, boolean or
// null).
type Literal struct {
	value sql.Value
}

// NewLiteral creates a new Literal expression.
func NewLiteral(value sql.Value) *Literal {
	return &Literal{value: value}
}

// Value returns the literal value.
func (p *Literal) Value() sql.Value { return p.value }

// Resolved implements the Expression interface.
func (p *Literal) Resolved() bool { return true }

// Children implements the Expression interface.
func (p *Literal) Children() []sql.Expression { return nil }

// Eval implements the Expression interface.
func (p *Literal) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return p.value, nil
}

// TransformUp implements the Expression interface.
func (p *Literal) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	nc := *p
	return fn(&nc)
}

// String implements the fmt.Stringer interface.
func (p *Literal) String() string {
	if p.value.Type == sql.StringType {
		return fmt.Sprintf("%q", p.value.Str)
	}
	return p.value.String()
}
