package aggregation

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// First keeps the value of its child on the first row of the group. The
// analyzer wraps grouped columns selected outside an aggregate with it,
// since they are constant within their group.
type First struct {
	expression.UnaryExpression
}

// NewFirst creates a new First node.
func NewFirst(e sql.Expression) sql.Expression {
	return &First{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface.
func (f *First) NewBuffer() sql.AggregationBuffer {
	return &firstBuffer{expr: f.Child, val: sql.Null}
}

// Eval implements the Expression interface.
func (f *First) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrEvalOutsideGroup.New(f)
}

// TransformUp implements the Expression interface.
func (f *First) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := f.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewFirst(child))
}

func (f *First) String() string {
	return fmt.Sprintf("FIRST(%s)", f.Child)
}

type firstBuffer struct {
	expr sql.Expression
	val  sql.Value
	set  bool
}

// Update implements the AggregationBuffer interface.
func (b *firstBuffer) Update(ctx *sql.Context, row sql.Row) error {
	if b.set {
		return nil
	}

	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}

	b.val = v
	b.set = true
	return nil
}

// Eval implements the AggregationBuffer interface.
func (b *firstBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	return b.val, nil
}
