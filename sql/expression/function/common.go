package function

import (
	"fmt"

	"github.com/delimsql/delimsql/sql"
)

// stringArg evaluates a string argument of a function. The null return is
// true when the argument evaluated to Null; any other non-string value is
// a type error.
func stringArg(ctx *sql.Context, row sql.Row, e sql.Expression, fname string) (s string, null bool, err error) {
	v, err := e.Eval(ctx, row)
	if err != nil {
		return "", false, err
	}

	if v.IsNull() {
		return "", true, nil
	}

	if v.Type != sql.StringType {
		return "", false, sql.ErrTypeMismatch.New(fmt.Sprintf("%s expects a STRING argument, got %s", fname, v.Type))
	}

	return v.Str, false, nil
}

// integerArg evaluates an integer argument of a function. Anything but an
// integer, including Null, is a type error.
func integerArg(ctx *sql.Context, row sql.Row, e sql.Expression, fname string) (int64, error) {
	v, err := e.Eval(ctx, row)
	if err != nil {
		return 0, err
	}

	if v.Type != sql.IntegerType {
		return 0, sql.ErrTypeMismatch.New(fmt.Sprintf("%s expects an INTEGER argument, got %s", fname, v.Type))
	}

	return v.Int, nil
}
