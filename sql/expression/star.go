package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// Star represents the selection of all available fields, either from all
// tables in scope or from a single one.
type Star struct {
	// Table is the table to select all fields from, or empty for all
	// tables in scope.
	Table string
}

// NewStar returns a new Star expression.
func NewStar() *Star {
	return new(Star)
}

// NewQualifiedStar returns a new Star expression scoped to a table.
func NewQualifiedStar(table string) *Star {
	return &Star{table}
}

// Resolved implements the Expression interface. A star is always a
// placeholder that analysis must expand, so it never reports resolved.
func (s *Star) Resolved() bool { return false }

// Children implements the Expression interface.
func (s *Star) Children() []sql.Expression { return nil }

// Eval implements the Expression interface.
func (s *Star) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, fmt.Errorf("cannot evaluate a star expression")
}

// TransformUp implements the Expression interface.
func (s *Star) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	nc := *s
	return fn(&nc)
}

// String implements the fmt.Stringer interface.
func (s *Star) String() string {
	if s.Table == "" {
		return "*"
	}
	return fmt.Sprintf("%s.*", s.Table)
}
