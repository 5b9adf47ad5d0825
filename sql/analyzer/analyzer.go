// Package analyzer resolves and validates parsed statement trees until
// they are ready to be executed.
package analyzer

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

const maxAnalysisIterations = 8

// ErrMaxAnalysisIters is thrown when the analysis iterations are exceeded.
var ErrMaxAnalysisIters = errors.NewKind("exceeded max analysis iterations (%d)")

// Analyzer analyzes nodes of the execution plan and applies rules and
// validations to them.
type Analyzer struct {
	// Batches of Rules to apply.
	Batches []*Batch
	// Catalog of databases and registered functions.
	Catalog *sql.Catalog
	// CurrentDatabase in use.
	CurrentDatabase string
}

// New returns a new Analyzer with the default rules.
func New(catalog *sql.Catalog) *Analyzer {
	return &Analyzer{
		Batches: []*Batch{
			{
				Desc:       "resolution",
				Iterations: maxAnalysisIterations,
				Rules:      DefaultRules,
			},
			{
				Desc:       "validation",
				Iterations: 1,
				Rules:      ValidationRules,
			},
		},
		Catalog: catalog,
	}
}

// Analyze applies the rule batches to the given node until it does not
// change anymore.
func (a *Analyzer) Analyze(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("analyze", opentracing.Tags{
		"plan": n.String(),
	})

	prev := n
	var err error
	for _, batch := range a.Batches {
		prev, err = batch.Eval(ctx, a, prev)
		if err != nil {
			span.Finish()
			return nil, err
		}
	}

	span.SetTag("IsResolved", prev.Resolved())
	span.Finish()

	return prev, nil
}

// Log prints a debug message tagged as coming from the analysis phase.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	logrus.WithField("phase", "analysis").Debugf(msg, args...)
}

type equaler interface {
	Equal(sql.Node) bool
}
