package aggregation

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// Avg is the AVG aggregation. It averages the numeric values of the
// group, skipping NULLs. The result is always a float, NULL when the
// group has no numeric value.
type Avg struct {
	expression.UnaryExpression
	distinct bool
}

// NewAvg creates a new Avg node.
func NewAvg(e sql.Expression) sql.Expression {
	return &Avg{expression.UnaryExpression{Child: e}, false}
}

// NewAvgDistinct creates a new Avg node that averages every distinct
// value only once.
func NewAvgDistinct(e sql.Expression) sql.Expression {
	return &Avg{expression.UnaryExpression{Child: e}, true}
}

// NewBuffer implements the Aggregation interface.
func (a *Avg) NewBuffer() sql.AggregationBuffer {
	b := &avgBuffer{expr: a.Child}
	if a.distinct {
		b.seen = make(seen)
	}
	return b
}

// Eval implements the Expression interface.
func (a *Avg) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrEvalOutsideGroup.New(a)
}

// TransformUp implements the Expression interface.
func (a *Avg) TransformUp(f sql.TransformExprFunc) (sql.Expression, error) {
	child, err := a.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	if a.distinct {
		return f(NewAvgDistinct(child))
	}
	return f(NewAvg(child))
}

func (a *Avg) String() string {
	if a.distinct {
		return fmt.Sprintf("AVG(DISTINCT %s)", a.Child)
	}
	return fmt.Sprintf("AVG(%s)", a.Child)
}

type avgBuffer struct {
	expr  sql.Expression
	seen  seen
	sum   float64
	count int64
}

// Update implements the AggregationBuffer interface.
func (b *avgBuffer) Update(ctx *sql.Context, row sql.Row) error {
	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}

	if !v.IsNumber() {
		return nil
	}

	if b.seen != nil {
		hash, err := hashOf(v)
		if err != nil {
			return err
		}
		if b.seen.add(hash) {
			return nil
		}
	}

	b.sum += v.Num()
	b.count++
	return nil
}

// Eval implements the AggregationBuffer interface.
func (b *avgBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	if b.count == 0 {
		return sql.Null, nil
	}
	return sql.NewFloat(b.sum / float64(b.count)), nil
}
