package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// comparison is the shared scaffolding of all comparison expressions. A
// comparison with a Null operand yields Null.
type comparison struct {
	BinaryExpression
}

// operands evaluates both sides. The null return is true when either side
// evaluated to Null.
func (c *comparison) operands(ctx *sql.Context, row sql.Row) (left, right sql.Value, null bool, err error) {
	left, err = c.Left.Eval(ctx, row)
	if err != nil {
		return sql.Null, sql.Null, false, err
	}

	right, err = c.Right.Eval(ctx, row)
	if err != nil {
		return sql.Null, sql.Null, false, err
	}

	return left, right, left.IsNull() || right.IsNull(), nil
}

// Equals is a comparison that checks two values for equality.
type Equals struct {
	comparison
}

// NewEquals returns a new Equals expression.
func NewEquals(left, right sql.Expression) *Equals {
	return &Equals{comparison{BinaryExpression{left, right}}}
}

// Eval implements the Expression interface.
func (e *Equals) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	l, r, null, err := e.operands(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewBoolean(l.Equals(r)), nil
}

// TransformUp implements the Expression interface.
func (e *Equals) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&e.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewEquals(left, right))
}

// String implements the fmt.Stringer interface.
func (e *Equals) String() string {
	return fmt.Sprintf("%s = %s", e.Left, e.Right)
}

// NotEquals is a comparison that checks two values for inequality.
type NotEquals struct {
	comparison
}

// NewNotEquals returns a new NotEquals expression.
func NewNotEquals(left, right sql.Expression) *NotEquals {
	return &NotEquals{comparison{BinaryExpression{left, right}}}
}

// Eval implements the Expression interface.
func (e *NotEquals) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	l, r, null, err := e.operands(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewBoolean(!l.Equals(r)), nil
}

// TransformUp implements the Expression interface.
func (e *NotEquals) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&e.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewNotEquals(left, right))
}

// String implements the fmt.Stringer interface.
func (e *NotEquals) String() string {
	return fmt.Sprintf("%s != %s", e.Left, e.Right)
}

// GreaterThan is a comparison that checks whether the left value sorts
// after the right one.
type GreaterThan struct {
	comparison
}

// NewGreaterThan returns a new GreaterThan expression.
func NewGreaterThan(left, right sql.Expression) *GreaterThan {
	return &GreaterThan{comparison{BinaryExpression{left, right}}}
}

// Eval implements the Expression interface.
func (e *GreaterThan) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	l, r, null, err := e.operands(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewBoolean(l.Compare(r) > 0), nil
}

// TransformUp implements the Expression interface.
func (e *GreaterThan) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&e.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewGreaterThan(left, right))
}

// String implements the fmt.Stringer interface.
func (e *GreaterThan) String() string {
	return fmt.Sprintf("%s > %s", e.Left, e.Right)
}

// LessThan is a comparison that checks whether the left value sorts before
// the right one.
type LessThan struct {
	comparison
}

// NewLessThan returns a new LessThan expression.
func NewLessThan(left, right sql.Expression) *LessThan {
	return &LessThan{comparison{BinaryExpression{left, right}}}
}

// Eval implements the Expression interface.
func (e *LessThan) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	l, r, null, err := e.operands(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewBoolean(l.Compare(r) < 0), nil
}

// TransformUp implements the Expression interface.
func (e *LessThan) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&e.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewLessThan(left, right))
}

// String implements the fmt.Stringer interface.
func (e *LessThan) String() string {
	return fmt.Sprintf("%s < %s", e.Left, e.Right)
}

// GreaterThanOrEqual is a comparison that checks whether the left value
// sorts after the right one or equals it.
type GreaterThanOrEqual struct {
	comparison
}

// NewGreaterThanOrEqual returns a new GreaterThanOrEqual expression.
func NewGreaterThanOrEqual(left, right sql.Expression) *GreaterThanOrEqual {
	return &GreaterThanOrEqual{comparison{BinaryExpression{left, right}}}
}

// Eval implements the Expression interface.
func (e *GreaterThanOrEqual) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	l, r, null, err := e.operands(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewBoolean(l.Compare(r) >= 0), nil
}

// TransformUp implements the Expression interface.
func (e *GreaterThanOrEqual) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&e.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewGreaterThanOrEqual(left, right))
}

// String implements the fmt.Stringer interface.
func (e *GreaterThanOrEqual) String() string {
	return fmt.Sprintf("%s >= %s", e.Left, e.Right)
}

// LessThanOrEqual is a comparison that checks whether the left value sorts
// before the right one or equals it.
type LessThanOrEqual struct {
	comparison
}

// NewLessThanOrEqual returns a new LessThanOrEqual expression.
func NewLessThanOrEqual(left, right sql.Expression) *LessThanOrEqual {
	return &LessThanOrEqual{comparison{BinaryExpression{left, right}}}
}

// Eval implements the Expression interface.
func (e *LessThanOrEqual) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	l, r, null, err := e.operands(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}
	return sql.NewBoolean(l.Compare(r) <= 0), nil
}

// TransformUp implements the Expression interface.
func (e *LessThanOrEqual) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&e.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewLessThanOrEqual(left, right))
}

// String implements the fmt.Stringer interface.
func (e *LessThanOrEqual) String() string {
	return fmt.Sprintf("%s <= %s", e.Left, e.Right)
}

// transformBinary transforms both children of a binary expression.
func transformBinary(
	e *BinaryExpression,
	fn sql.TransformExprFunc,
) (left, right sql.Expression, err error) {
	left, err = e.Left.TransformUp(fn)
	if err != nil {
		return nil, nil, err
	}

	right, err = e.Right.TransformUp(fn)
	if err != nil {
		return nil, nil, err
	}

	return left, right, nil
}
