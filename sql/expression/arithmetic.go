package expression

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// Arithmetic expressions (+, -, *, /). Both operands must be numbers;
// the result is an integer when both operands are integers, including
// truncating division, and a float otherwise.
type Arithmetic struct {
	BinaryExpression
	Op string
}

// NewArithmetic creates a new Arithmetic expression.
func NewArithmetic(left, right sql.Expression, op string) *Arithmetic {
	return &Arithmetic{BinaryExpression{Left: left, Right: right}, op}
}

// NewPlus creates a new Arithmetic + expression.
func NewPlus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "+")
}

// NewMinus creates a new Arithmetic - expression.
func NewMinus(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "-")
}

// NewMult creates a new Arithmetic * expression.
func NewMult(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "*")
}

// NewDiv creates a new Arithmetic / expression.
func NewDiv(left, right sql.Expression) *Arithmetic {
	return NewArithmetic(left, right, "/")
}

// Eval implements the Expression interface.
func (a *Arithmetic) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	lval, err := a.Left.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}

	rval, err := a.Right.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}

	if !lval.IsNumber() {
		return sql.Null, sql.ErrTypeMismatch.New(fmt.Sprintf("cannot apply %q to %s", a.Op, lval.Type))
	}
	if !rval.IsNumber() {
		return sql.Null, sql.ErrTypeMismatch.New(fmt.Sprintf("cannot apply %q to %s", a.Op, rval.Type))
	}

	if lval.Type == sql.IntegerType && rval.Type == sql.IntegerType {
		return a.evalInteger(lval.Int, rval.Int)
	}
	return a.evalFloat(lval.Num(), rval.Num())
}

func (a *Arithmetic) evalInteger(l, r int64) (sql.Value, error) {
	switch a.Op {
	case "+":
		return sql.NewInteger(l + r), nil
	case "-":
		return sql.NewInteger(l - r), nil
	case "*":
		return sql.NewInteger(l * r), nil
	case "/":
		if r == 0 {
			return sql.Null, sql.ErrDivisionByZero.New()
		}
		return sql.NewInteger(l / r), nil
	}
	return sql.Null, sql.ErrValidation.New(fmt.Sprintf("unknown operator %q", a.Op))
}

func (a *Arithmetic) evalFloat(l, r float64) (sql.Value, error) {
	switch a.Op {
	case "+":
		return sql.NewFloat(l + r), nil
	case "-":
		return sql.NewFloat(l - r), nil
	case "*":
		return sql.NewFloat(l * r), nil
	case "/":
		if r == 0 {
			return sql.Null, sql.ErrDivisionByZero.New()
		}
		return sql.NewFloat(l / r), nil
	}
	return sql.Null, sql.ErrValidation.New(fmt.Sprintf("unknown operator %q", a.Op))
}

// Resolved implements the Expression interface.
func (a *Arithmetic) Resolved() bool {
	return a.BinaryExpression.Resolved()
}

// TransformUp implements the Expression interface.
func (a *Arithmetic) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	left, err := a.Left.TransformUp(fn)
	if err != nil {
		return nil, err
	}

	right, err := a.Right.TransformUp(fn)
	if err != nil {
		return nil, err
	}

	return fn(NewArithmetic(left, right, a.Op))
}

// String implements the fmt.Stringer interface.
func (a *Arithmetic) String() string {
	return fmt.Sprintf("%s %s %s", a.Left, a.Op, a.Right)
}

// UnaryMinus is the negation of a number.
type UnaryMinus struct {
	UnaryExpression
}

// NewUnaryMinus creates a new UnaryMinus expression.
func NewUnaryMinus(child sql.Expression) *UnaryMinus {
	return &UnaryMinus{UnaryExpression{Child: child}}
}

// Eval implements the Expression interface.
func (e *UnaryMinus) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	child, err := e.Child.Eval(ctx, row)
	if err != nil {
		return sql.Null, err
	}

	switch child.Type {
	case sql.IntegerType:
		return sql.NewInteger(-child.Int), nil
	case sql.FloatType:
		return sql.NewFloat(-child.Float), nil
	}
	return sql.Null, sql.ErrTypeMismatch.New(fmt.Sprintf("cannot negate %s", child.Type))
}

// TransformUp implements the Expression interface.
func (e *UnaryMinus) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	child, err := e.Child.TransformUp(fn)
	if err != nil {
		return nil, err
	}
	return fn(NewUnaryMinus(child))
}

// String implements the fmt.Stringer interface.
func (e *UnaryMinus) String() string {
	return fmt.Sprintf("-%s", e.Child)
}
