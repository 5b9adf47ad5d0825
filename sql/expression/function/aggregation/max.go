package aggregation

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// Max is the MAX aggregation. It keeps the largest non-NULL value of the
// group under the total value ordering, NULL when there is none.
type Max struct {
	expression.UnaryExpression
	distinct bool
}

// NewMax creates a new Max node.
func NewMax(e sql.Expression) sql.Expression {
	return &Max{expression.UnaryExpression{Child: e}, false}
}

// NewMaxDistinct creates a new Max node. Duplicates cannot change a
// maximum, so it behaves exactly like Max.
func NewMaxDistinct(e sql.Expression) sql.Expression {
	return &Max{expression.UnaryExpression{Child: e}, true}
}

// NewBuffer implements the Aggregation interface.
func (m *Max) NewBuffer() sql.AggregationBuffer {
	return &maxBuffer{expr: m.Child, val: sql.Null}
}

// Eval implements the Expression interface.
func (m *Max) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrEvalOutsideGroup.New(m)
}

// TransformUp implements the Expression interface.
func (m *Max) TransformUp(f sql.TransformExprFunc) (sql.Expression, error) {
	child, err := m.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	if m.distinct {
		return f(NewMaxDistinct(child))
	}
	return f(NewMax(child))
}

func (m *Max) String() string {
	if m.distinct {
		return fmt.Sprintf("MAX(DISTINCT %s)", m.Child)
	}
	return fmt.Sprintf("MAX(%s)", m.Child)
}

type maxBuffer struct {
	expr sql.Expression
	val  sql.Value
}

// Update implements the AggregationBuffer interface.
func (b *maxBuffer) Update(ctx *sql.Context, row sql.Row) error {
	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}

	if v.IsNull() {
		return nil
	}

	if b.val.IsNull() || v.Compare(b.val) > 0 {
		b.val = v
	}
	return nil
}

// Eval implements the AggregationBuffer interface.
func (b *maxBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	return b.val, nil
}
