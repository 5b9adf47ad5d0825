// Package delimsql is an embeddable SQL engine over delimited text
// files. Files are loaded into in-memory tables, queried and mutated
// with plain SQL, and written back to their origin on request.
package delimsql

import (
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/analyzer"
	"github.com/delimsql/delimsql/sql/expression/function"
	"github.com/delimsql/delimsql/sql/parse"
)

// Engine is a SQL engine.
type Engine struct {
	Catalog  *sql.Catalog
	Analyzer *analyzer.Analyzer
}

// New creates a new Engine with the default functions registered.
func New() *Engine {
	c := sql.NewCatalog()
	c.RegisterFunctions(function.Defaults)

	a := analyzer.New(c)
	return &Engine{c, a}
}

// Query executes the given query and returns the schema of the result
// and an iterator to read the result rows.
func (e *Engine) Query(
	ctx *sql.Context,
	query string,
) (sql.Schema, sql.RowIter, error) {
	span, ctx := ctx.Span("query", opentracing.Tag{Key: "query", Value: query})
	defer span.Finish()

	parsed, err := parse.Parse(ctx, query)
	if err != nil {
		return nil, nil, err
	}

	analyzed, err := e.Analyzer.Analyze(ctx, parsed)
	if err != nil {
		return nil, nil, err
	}

	iter, err := analyzed.RowIter(ctx)
	if err != nil {
		return nil, nil, err
	}

	return analyzed.Schema(), iter, nil
}

// AddDatabase adds the given database to the catalog and makes it the
// current database of the analyzer.
func (e *Engine) AddDatabase(db sql.Database) {
	e.Catalog.AddDatabase(db)
	e.Analyzer.CurrentDatabase = db.Name()
}
