package expression

import (
	"fmt"
	"strings"

	"gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrUnresolvedExpression is returned when an expression that requires
// resolution is evaluated without having gone through analysis.
var ErrUnresolvedExpression = errors.NewKind("expression is not resolved: %s")

// UnresolvedColumn is a column identifier that has not yet been resolved
// to a field of a table in scope.
type UnresolvedColumn struct {
	name  string
	table string
}

// NewUnresolvedColumn creates a new unqualified UnresolvedColumn.
func NewUnresolvedColumn(name string) *UnresolvedColumn {
	return &UnresolvedColumn{name: name}
}

// NewUnresolvedQualifiedColumn creates a new UnresolvedColumn qualified
// with a table name.
func NewUnresolvedQualifiedColumn(table, name string) *UnresolvedColumn {
	return &UnresolvedColumn{name: name, table: table}
}

// Name returns the name of the column.
func (uc *UnresolvedColumn) Name() string { return uc.name }

// Table returns the table qualifier, if any.
func (uc *UnresolvedColumn) Table() string { return uc.table }

// Resolved implements the Expression interface.
func (uc *UnresolvedColumn) Resolved() bool { return false }

// Children implements the Expression interface.
func (uc *UnresolvedColumn) Children() []sql.Expression { return nil }

// Eval implements the Expression interface.
func (uc *UnresolvedColumn) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrUnresolvedExpression.New(uc.String())
}

// TransformUp implements the Expression interface.
func (uc *UnresolvedColumn) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	nc := *uc
	return fn(&nc)
}

// String implements the fmt.Stringer interface.
func (uc *UnresolvedColumn) String() string {
	if uc.table == "" {
		return uc.name
	}
	return fmt.Sprintf("%s.%s", uc.table, uc.name)
}

// UnresolvedFunction is a function call that has not yet been resolved
// against the function registry.
type UnresolvedFunction struct {
	name string
	// Distinct is true for aggregate calls of the form fn(DISTINCT expr).
	Distinct  bool
	Arguments []sql.Expression
}

// NewUnresolvedFunction creates a new UnresolvedFunction.
func NewUnresolvedFunction(name string, distinct bool, arguments ...sql.Expression) *UnresolvedFunction {
	return &UnresolvedFunction{
		name:      strings.ToLower(name),
		Distinct:  distinct,
		Arguments: arguments,
	}
}

// Name returns the name of the function.
func (uf *UnresolvedFunction) Name() string { return uf.name }

// Resolved implements the Expression interface.
func (uf *UnresolvedFunction) Resolved() bool { return false }

// Children implements the Expression interface.
func (uf *UnresolvedFunction) Children() []sql.Expression { return uf.Arguments }

// Eval implements the Expression interface.
func (uf *UnresolvedFunction) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrUnresolvedExpression.New(uf.String())
}

// TransformUp implements the Expression interface.
func (uf *UnresolvedFunction) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	args := make([]sql.Expression, len(uf.Arguments))
	for i, arg := range uf.Arguments {
		a, err := arg.TransformUp(fn)
		if err != nil {
			return nil, err
		}
		args[i] = a
	}

	return fn(NewUnresolvedFunction(uf.name, uf.Distinct, args...))
}

// String implements the fmt.Stringer interface.
func (uf *UnresolvedFunction) String() string {
	var args = make([]string, len(uf.Arguments))
	for i, arg := range uf.Arguments {
		args[i] = arg.String()
	}

	if uf.Distinct {
		return fmt.Sprintf("%s(DISTINCT %s)", uf.name, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", uf.name, strings.Join(args, ", "))
}
