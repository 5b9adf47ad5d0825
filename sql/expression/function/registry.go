// Package function provides the built-in scalar functions of the engine
// and the default registry binding them, together with the aggregation
// functions, to their SQL names.
package function

import (
	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/expression/function/aggregation"
)

// Defaults is the set of functions registered by default in the engine.
var Defaults = []sql.Function{
	sql.Function1{Name: "upper", Fn: func(e sql.Expression) sql.Expression { return NewUpper(e) }},
	sql.Function1{Name: "lower", Fn: func(e sql.Expression) sql.Expression { return NewLower(e) }},
	sql.Function1{Name: "trim", Fn: func(e sql.Expression) sql.Expression { return NewTrim(e) }},
	sql.FunctionN{Name: "substr", Fn: NewSubstr},
	sql.FunctionN{Name: "substring", Fn: NewSubstr},
	sql.Function3{Name: "replace", Fn: func(e1, e2, e3 sql.Expression) sql.Expression { return NewReplace(e1, e2, e3) }},
	sql.Function1{Name: "count", Fn: func(e sql.Expression) sql.Expression { return aggregation.NewCount(e) }},
	sql.Function1{Name: "sum", Fn: func(e sql.Expression) sql.Expression { return aggregation.NewSum(e) }},
	sql.Function1{Name: "avg", Fn: func(e sql.Expression) sql.Expression { return aggregation.NewAvg(e) }},
	sql.Function1{Name: "min", Fn: func(e sql.Expression) sql.Expression { return aggregation.NewMin(e) }},
	sql.Function1{Name: "max", Fn: func(e sql.Expression) sql.Expression { return aggregation.NewMax(e) }},
}
