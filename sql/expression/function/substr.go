package function

import (
	"fmt"
	"strings"

	"github.com/delimsql/delimsql/sql"
)

// Substr is a function that returns a substring of a string, with a
// 1-based start position. A negative start counts from the end of the
// string; a start past either end yields the empty string. The optional
// third argument is a non-negative length, clamped to the end of the
// string. Positions are measured in code points.
type Substr struct {
	str   sql.Expression
	start sql.Expression
	len   sql.Expression
}

// NewSubstr creates a new Substr expression from 2 or 3 arguments.
func NewSubstr(args ...sql.Expression) (sql.Expression, error) {
	switch len(args) {
	case 2:
		return &Substr{str: args[0], start: args[1]}, nil
	case 3:
		return &Substr{str: args[0], start: args[1], len: args[2]}, nil
	}
	return nil, sql.ErrInvalidArgumentNumber.New("SUBSTR", "2 or 3", len(args))
}

// Resolved implements the Expression interface.
func (s *Substr) Resolved() bool {
	for _, e := range s.Children() {
		if !e.Resolved() {
			return false
		}
	}
	return true
}

// Children implements the Expression interface.
func (s *Substr) Children() []sql.Expression {
	children := []sql.Expression{s.str, s.start}
	if s.len != nil {
		children = append(children, s.len)
	}
	return children
}

// Eval implements the Expression interface.
func (s *Substr) Eval(ctx *sql.Context, row sql.Row) (sql.Value, error) {
	str, null, err := stringArg(ctx, row, s.str, "SUBSTR")
	if err != nil {
		return sql.Null, err
	}
	if null {
		return sql.Null, nil
	}

	start, err := integerArg(ctx, row, s.start, "SUBSTR")
	if err != nil {
		return sql.Null, err
	}

	runes := []rune(str)
	n := int64(len(runes))

	var begin int64
	switch {
	case start > 0:
		begin = start - 1
	case start < 0:
		begin = n + start
	default:
		return sql.NewString(""), nil
	}

	if begin < 0 || begin >= n {
		return sql.NewString(""), nil
	}

	end := n
	if s.len != nil {
		length, err := integerArg(ctx, row, s.len, "SUBSTR")
		if err != nil {
			return sql.Null, err
		}
		if length < 0 {
			return sql.Null, sql.ErrValidation.New("SUBSTR length must not be negative")
		}
		if begin+length < end {
			end = begin + length
		}
	}

	return sql.NewString(string(runes[begin:end])), nil
}

// TransformUp implements the Expression interface.
func (s *Substr) TransformUp(fn sql.TransformExprFunc) (sql.Expression, error) {
	str, err := s.str.TransformUp(fn)
	if err != nil {
		return nil, err
	}

	start, err := s.start.TransformUp(fn)
	if err != nil {
		return nil, err
	}

	var length sql.Expression
	if s.len != nil {
		length, err = s.len.TransformUp(fn)
		if err != nil {
			return nil, err
		}
	}

	ns := &Substr{str: str, start: start, len: length}
	return fn(ns)
}

// String implements the fmt.Stringer interface.
func (s *Substr) String() string {
	var args = make([]string, len(s.Children()))
	for i, e := range s.Children() {
		args[i] = e.String()
	}
	return fmt.Sprintf("SUBSTR(%s)", strings.Join(args, ", "))
}
