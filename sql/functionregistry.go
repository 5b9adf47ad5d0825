package sql

import (
	"strings"

	"github.com/delimsql/delimsql/internal/similartext"
)

// Function is a builder of expressions for one function name.
type Function interface {
	// Call invokes the function with the given arguments.
	Call(args ...Expression) (Expression, error)
	// FunctionName returns the canonical name of the function.
	FunctionName() string
}

// Function1 is a function with exactly 1 argument.
type Function1 struct {
	Name string
	Fn   func(e Expression) Expression
}

// Call implements the Function interface.
func (fn Function1) Call(args ...Expression) (Expression, error) {
	if len(args) != 1 {
		return nil, ErrInvalidArgumentNumber.New(fn.Name, 1, len(args))
	}
	return fn.Fn(args[0]), nil
}

// FunctionName implements the Function interface.
func (fn Function1) FunctionName() string { return fn.Name }

// Function3 is a function with exactly 3 arguments.
type Function3 struct {
	Name string
	Fn   func(e1, e2, e3 Expression) Expression
}

// Call implements the Function interface.
func (fn Function3) Call(args ...Expression) (Expression, error) {
	if len(args) != 3 {
		return nil, ErrInvalidArgumentNumber.New(fn.Name, 3, len(args))
	}
	return fn.Fn(args[0], args[1], args[2]), nil
}

// FunctionName implements the Function interface.
func (fn Function3) FunctionName() string { return fn.Name }

// FunctionN is a function with a variable number of arguments. The builder
// is responsible for validating the arity it receives.
type FunctionN struct {
	Name string
	Fn   func(args ...Expression) (Expression, error)
}

// Call implements the Function interface.
func (fn FunctionN) Call(args ...Expression) (Expression, error) {
	return fn.Fn(args...)
}

// FunctionName implements the Function interface.
func (fn FunctionN) FunctionName() string { return fn.Name }

// FunctionRegistry is used to register and look up functions by name,
// case-insensitively.
type FunctionRegistry map[string]Function

// NewFunctionRegistry creates a new FunctionRegistry.
func NewFunctionRegistry() FunctionRegistry {
	return make(FunctionRegistry)
}

// RegisterFunction registers one function.
func (r FunctionRegistry) RegisterFunction(f Function) {
	r[strings.ToLower(f.FunctionName())] = f
}

// RegisterFunctions registers a batch of functions.
func (r FunctionRegistry) RegisterFunctions(fns []Function) {
	for _, f := range fns {
		r.RegisterFunction(f)
	}
}

// Function returns the function with the given name.
func (r FunctionRegistry) Function(name string) (Function, error) {
	if len(r) == 0 {
		return nil, ErrFunctionNotFound.New(name)
	}

	if f, ok := r[strings.ToLower(name)]; ok {
		return f, nil
	}

	return nil, ErrFunctionNotFound.New(name + similartext.FindFromMap(r, name))
}
