package aggregation

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression"
)

// Count is the COUNT aggregation. COUNT(*) counts the rows of the group,
// COUNT(expr) the rows where expr is not NULL.
type Count struct {
	expression.UnaryExpression
}

// NewCount creates a new Count node.
func NewCount(e sql.Expression) sql.Expression {
	return &Count{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface.
func (c *Count) NewBuffer() sql.AggregationBuffer {
	_, star := c.Child.(*expression.Star)
	return &countBuffer{expr: c.Child, star: star}
}

// Resolved implements the Resolvable interface.
func (c *Count) Resolved() bool {
	if _, ok := c.Child.(*expression.Star); ok {
		return true
	}
	return c.Child.Resolved()
}

// Eval implements the Expression interface.
func (c *Count) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrEvalOutsideGroup.New(c)
}

// TransformUp implements the Expression interface.
func (c *Count) TransformUp(f sql.TransformExprFunc) (sql.Expression, error) {
	child, err := c.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewCount(child))
}

func (c *Count) String() string {
	return fmt.Sprintf("COUNT(%s)", c.Child)
}

type countBuffer struct {
	expr  sql.Expression
	star  bool
	count int64
}

// Update implements the AggregationBuffer interface.
func (b *countBuffer) Update(ctx *sql.Context, row sql.Row) error {
	if b.star {
		b.count++
		return nil
	}

	v, err := b.expr.Eval(ctx, row)
	if err != nil {
		return err
	}

	if !v.IsNull() {
		b.count++
	}
	return nil
}

// Eval implements the AggregationBuffer interface.
func (b *countBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	return sql.NewInteger(b.count), nil
}

// CountDistinct is the COUNT(DISTINCT expr) aggregation. It counts the
// distinct non-NULL values of expr across the group. With a star child it
// counts the distinct rows of the group.
type CountDistinct struct {
	expression.UnaryExpression
}

// NewCountDistinct creates a new CountDistinct node.
func NewCountDistinct(e sql.Expression) sql.Expression {
	return &CountDistinct{expression.UnaryExpression{Child: e}}
}

// NewBuffer implements the Aggregation interface.
func (c *CountDistinct) NewBuffer() sql.AggregationBuffer {
	_, star := c.Child.(*expression.Star)
	return &countDistinctBuffer{expr: c.Child, star: star, seen: make(seen)}
}

// Resolved implements the Resolvable interface.
func (c *CountDistinct) Resolved() bool {
	if _, ok := c.Child.(*expression.Star); ok {
		return true
	}
	return c.Child.Resolved()
}

// Eval implements the Expression interface.
func (c *CountDistinct) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	return sql.Null, ErrEvalOutsideGroup.New(c)
}

// TransformUp implements the Expression interface.
func (c *CountDistinct) TransformUp(f sql.TransformExprFunc) (sql.Expression, error) {
	child, err := c.Child.TransformUp(f)
	if err != nil {
		return nil, err
	}
	return f(NewCountDistinct(child))
}

func (c *CountDistinct) String() string {
	return fmt.Sprintf("COUNT(DISTINCT %s)", c.Child)
}

type countDistinctBuffer struct {
	expr  sql.Expression
	star  bool
	seen  seen
	count int64
}

// Update implements the AggregationBuffer interface.
func (b *countDistinctBuffer) Update(ctx *sql.Context, row sql.Row) error {
	var hash uint64
	if b.star {
		h, err := hashOfRow(row)
		if err != nil {
			return err
		}
		hash = h
	} else {
		v, err := b.expr.Eval(ctx, row)
		if err != nil {
			return err
		}

		if v.IsNull() {
			return nil
		}

		h, err := hashOf(v)
		if err != nil {
			return err
		}
		hash = h
	}

	if !b.seen.add(hash) {
		b.count++
	}
	return nil
}

// Eval implements the AggregationBuffer interface.
func (b *countDistinctBuffer) Eval(ctx *sql.Context) (sql.Value, error) {
	return sql.NewInteger(b.count), nil
}
