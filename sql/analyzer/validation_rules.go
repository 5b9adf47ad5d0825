package analyzer

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/plan"
)

// ValidationRules to apply while analyzing nodes.
var ValidationRules = []Rule{
	{"validate_resolved", validateIsResolved},
	{"validate_limits", validateLimits},
}

// ErrValidationResolved is returned when the plan can not be resolved.
var ErrValidationResolved = errors.NewKind("plan is not resolved because of node '%T'")

func validateIsResolved(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, _ := ctx.Span("validate_resolved")
	defer span.Finish()

	if !n.Resolved() {
		return nil, ErrValidationResolved.New(n)
	}

	return n, nil
}

func validateLimits(ctx *sql.Context, a *Analyzer, n sql.Node) (sql.Node, error) {
	span, _ := ctx.Span("validate_limits")
	defer span.Finish()

	var err error
	plan.Inspect(n, func(n sql.Node) bool {
		switch n := n.(type) {
		case *plan.Limit:
			if n.Limit < 0 {
				err = sql.ErrValidation.New(fmt.Sprintf("LIMIT must not be negative, got %d", n.Limit))
				return false
			}
		case *plan.Offset:
			if n.Offset < 0 {
				err = sql.ErrValidation.New(fmt.Sprintf("OFFSET must not be negative, got %d", n.Offset))
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}
