package aggregation

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// Sum is the SUM aggregation. It adds the numeric values of the group,
// skipping NULLs, and returns NULL when the group has no numeric value.
// The result stays an integer unless a float is accumulated.
type Sum struct {
	expression.UnaryExpression
	distinct bool
}

// NewSum creates a new Sum node.
func NewSum(e sql.Expression) sql.Expression {
	return &Sum{expression.UnaryExpression{Child: e}, false}
}

// NewSumDistinct creates a new Sum node that adds every distinct value
// only once.
func NewSumDistinct(e sql.Expression) sql.Expression {
	return &Sum{expression.UnaryExpression{Child: e}, true}
}

// NewBuffer implements the Aggregation interface.
func (s *Sum) NewBuffer() sql.AggregationBuffer {
	b := &sumBuffer{expr: s.Child}
	if s.distinct {
		b.seen = make(seen)
	}
	return b
}

// Eval implements the Expression interface.
func (s *Sum) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrEvalOutsideGroup.New(s)
}

// TransformUp implements the Expression interface.
func (s *Sum) TransformUp(f sql.TransformExprFunc) (sql.Expression, error) {
	child, err := s.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	if s.distinct {
		return f(NewSumDistinct(child))
	}
	return f(NewSum(child))
}

func (s *Sum) String() string {
	if s.distinct {
		return fmt.Sprintf("SUM(DISTINCT %s)", s.Child)
	}
	return fmt.Sprintf("SUM(%s)", s.Child)
}

type sumBuffer struct {
	expr    sql.Expression
	seen    seen
	intSum  int64
	sum     float64
	isFloat bool
	some    bool
}

// Update implements the AggregationBuffer interface.
func (b *sumBuffer) Update(ctx *sql.Context, row sql.Row) error {
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

	b.some = true
	switch v.Type {
	case sql.IntegerType:
		if b.isFloat {
			b.sum += float64(v.Int)
		} else {
			b.intSum += v.Int
		}
	case sql.FloatType:
		if !b.isFloat {
			b.sum = float64(b.intSum)
			b.isFloat = true
		}
		b.sum += v.Float
	}
	return nil
}

// Eval implements the AggregationBuffer interface.
func (b *sumBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	if !b.some {
		return sql.Null, nil
	}
	if b.isFloat {
		return sql.NewFloat(b.sum), nil
	}
	return sql.NewInteger(b.intSum), nil
}
