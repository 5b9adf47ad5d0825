package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// asBool classifies a value as a three-valued boolean. The null return is
// true for Null; any non-boolean, non-null value is a type error.
func asBool(v sql.Value, op string) (val, null bool, err error) {
	switch v.Type {
	case sql.NullType:
		return false, true, nil
	case sql.BooleanType:
		return v.Bool, false, nil
	}
	return false, false, sql.ErrTypeMismatch.New(fmt.Sprintf("cannot use %s as a boolean operand of %s", v.Type, op))
}

// And checks whether two expressions are both true, with three-valued
// logic: NULL AND false is false, NULL AND true is NULL.
type And struct {
	BinaryExpression
}

// NewAnd creates a new And expression.
func NewAnd(left, right sql.Expression) *And {
	return &And{BinaryExpression{left, right}}
}

// Eval implements the Expression interface.
func (a *And) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lval, err := a.Left.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	l, lnull, err := asBool(lval, "AND")
	if err != nil {
		return sql.Null, err
	}
	if !lnull && !l {
		return sql.NewBoolean(false), nil
	}

	rval, err := a.Right.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	r, rnull, err := asBool(rval, "AND")
	if err != nil {
		return sql.Null, err
	}
	if !rnull && !r {
		return sql.NewBoolean(false), nil
	}

	if lnull || rnull {
		return sql.Null, nil
	}
	return sql.NewBoolean(true), nil
}

// TransformUp implements the Expression interface.
func (a *And) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&a.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewAnd(left, right))
}

// String implements the fmt.Stringer interface.
func (a *And) String() string {
	return fmt.Sprintf("%s AND %s", a.Left, a.Right)
}

// Or checks whether one of two expressions is true, with three-valued
// logic: NULL OR true is true, NULL OR false is NULL.
type Or struct {
	BinaryExpression
}

// NewOr creates a new Or expression.
func NewOr(left, right sql.Expression) *Or {
	return &Or{BinaryExpression{left, right}}
}

// Eval implements the Expression interface.
func (o *Or) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lval, err := o.Left.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	l, lnull, err := asBool(lval, "OR")
	if err != nil {
		return sql.Null, err
	}
	if !lnull && l {
		return sql.NewBoolean(true), nil
	}

	rval, err := o.Right.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}
	r, rnull, err := asBool(rval, "OR")
	if err != nil {
		return sql.Null, err
	}
	if !rnull && r {
		return sql.NewBoolean(true), nil
	}

	if lnull || rnull {
		return sql.Null, nil
	}
	return sql.NewBoolean(false), nil
}

// TransformUp implements the Expression interface.
func (o *Or) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, right, err := transformBinary(&o.BinaryExpression, fn)
	if err != nil {
		return nil, err
	}
	return fn(NewOr(left, right))
}

// String implements the fmt.Stringer interface.
func (o *Or) String() string {
	return fmt.Sprintf("%s OR %s", o.Left, o.Right)
}
