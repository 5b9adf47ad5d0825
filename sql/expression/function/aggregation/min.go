package aggregation

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// Min is the MIN aggregation. It keeps the smallest non-NULL value of
// the group under the total value ordering, NULL when there is none.
type Min struct {
	expression.UnaryExpression
	distinct bool
}

// NewMin creates a new Min node.
func NewMin(e sql.Expression) sql.Expression {
	return &Min{expression.UnaryExpression{Child: e}, false}
}

// NewMinDistinct creates a new Min node. Duplicates cannot change a
// minimum, so it behaves exactly like Min.
func NewMinDistinct(e sql.Expression) sql.Expression {
	return &Min{expression.UnaryExpression{Child: e}, true}
}

// NewBuffer implements the Aggregation interface.
func (m *Min) NewBuffer() sql.AggregationBuffer {
	return &minBuffer{expr: m.Child, val: sql.Null}
}

// Eval implements the Expression interface.
func (m *Min) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrEvalOutsideGroup.New(m)
}

// TransformUp implements the Expression interface.
func (m *Min) TransformUp(f sql.TransformExprFunc) (sql.Expression, error) {
	child, err := m.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	if m.distinct {
		return f(NewMinDistinct(child))
	}
	return f(NewMin(child))
}

func (m *Min) String() string {
	if m.distinct {
		return fmt.Sprintf("MIN(DISTINCT %s)", m.Child)
	}
	return fmt.Sprintf("MIN(%s)", m.Child)
}

type minBuffer struct {
	expr sql.Expression
	val  sql.Value
}

// Update implements the AggregationBuffer interface.
func (b *minBuffer) Update(ctx *sql.Context, row sql.Row) error {
	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}

	if v.IsNull() {
		return nil
	}

	if b.val.IsNull() || v.Compare(b.val) < 0 {
		b.val = v
	}
	return nil
}

// Eval implements the AggregationBuffer interface.
func (b *minBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	return b.val, nil
}
