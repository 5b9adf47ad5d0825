package delimsql

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/delimsql/delimsql/filetable"
	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/parse"
	"github.com/delimsql/delimsql/sql/plan"
)

// Result is the outcome of one executed statement: a *QueryResult for
// statements that read, a *MutationSummary for statements that write.
type Result interface {
	result()
}

// QueryResult is the materialized result of a reading statement. Columns
// and Rows keep the order the engine produced them in.
type QueryResult struct {
	Columns []string
	Rows    []sql.Row
}

func (*QueryResult) result() {}

// MutationSummary reports the outcome of a writing statement: the table
// it targeted and how many rows actually changed. A CREATE TABLE reports
// zero affected rows.
type MutationSummary struct {
	Table    string
	Affected int
}

func (*MutationSummary) result() {}

// Session owns a set of file-backed tables and executes SQL statements
// against them, one at a time. It tracks which tables have been modified
// since they were loaded so that only those are written back.
type Session struct {
	engine *Engine
	db     *filetable.Database
	ctx    *sql.Context
}

// NewSession creates a session with an empty table set.
func NewSession() *Session {
	engine := New()
	db := filetable.NewDatabase("files")
	engine.AddDatabase(db)

	return &Session{
		engine: engine,
		db:     db,
		ctx:    sql.NewContext(context.Background()),
	}
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.ctx.ID()
}

// Load reads the file at path into a new table with the given name and
// registers it in the session.
func (s *Session) Load(name, path string, opts filetable.LoadOptions) (*filetable.Table, error) {
	t, err := filetable.LoadFile(name, path, opts)
	if err != nil {
		return nil, err
	}

	if err := s.db.AddTable(t); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"session": s.ID(),
		"table":   name,
		"path":    path,
		"rows":    t.RowCount(),
	}).Debug("table loaded")

	return t, nil
}

// AddTable registers an already built table in the session.
func (s *Session) AddTable(t *filetable.Table) error {
	return s.db.AddTable(t)
}

// Table returns the table with the given name.
func (s *Session) Table(name string) (*filetable.Table, error) {
	return s.db.Table(name)
}

// Tables returns the names of all tables in the session, sorted.
func (s *Session) Tables() []string {
	return s.db.TableNames()
}

// DirtyTables returns the names of the tables modified since they were
// loaded or last saved, sorted.
func (s *Session) DirtyTables() []string {
	dirty := s.db.DirtyTables()
	names := make([]string, len(dirty))
	for i, t := range dirty {
		names[i] = t.Name()
	}
	return names
}

// SaveDirty writes every dirty table back to its backing file and
// returns the names of the tables it saved.
func (s *Session) SaveDirty() ([]string, error) {
	names, err := filetable.SaveDirty(s.db)
	if err != nil {
		return names, err
	}

	logrus.WithFields(logrus.Fields{
		"session": s.ID(),
		"tables":  names,
	}).Debug("dirty tables saved")

	return names, nil
}

// SaveTable writes the named table back to its backing file whether it
// is dirty or not.
func (s *Session) SaveTable(name string) error {
	t, err := s.db.Table(name)
	if err != nil {
		return err
	}

	return filetable.Save(t)
}

// Execute runs a single SQL statement. Statements that read produce a
// *QueryResult; INSERT, UPDATE, DELETE and CREATE TABLE produce a
// *MutationSummary. A statement with no content produces an empty
// QueryResult.
func (s *Session) Execute(query string) (Result, error) {
	span, ctx := s.ctx.Span("execute", opentracing.Tag{Key: "query", Value: query})
	defer span.Finish()

	parsed, err := parse.Parse(ctx, query)
	if err != nil {
		return nil, err
	}

	analyzed, err := s.engine.Analyzer.Analyze(ctx, parsed)
	if err != nil {
		return nil, err
	}

	if n, ok := mutationNode(analyzed); ok {
		return s.executeMutation(ctx, n)
	}

	return s.executeQuery(ctx, analyzed)
}

func (s *Session) executeQuery(ctx *sql.Context, n sql.Node) (Result, error) {
	iter, err := n.RowIter(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := sql.RowIterToRows(iter)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"session": s.ID(),
		"rows":    len(rows),
	}).Debug("query executed")

	return &QueryResult{
		Columns: n.Schema().ColumnNames(),
		Rows:    rows,
	}, nil
}

func (s *Session) executeMutation(ctx *sql.Context, n mutation) (Result, error) {
	affected, err := n.Execute(ctx)
	if err != nil {
		return nil, err
	}

	summary := &MutationSummary{
		Table:    mutatedTable(n),
		Affected: affected,
	}

	logrus.WithFields(logrus.Fields{
		"session": s.ID(),
		"table":   summary.Table,
		"rows":    summary.Affected,
	}).Debug("mutation executed")

	return summary, nil
}

// mutation is a plan node that writes instead of reads.
type mutation interface {
	sql.Node
	Execute(ctx *sql.Context) (int, error)
}

// mutationNode classifies the analyzed statement, returning its
// executable form when it is a mutation.
func mutationNode(n sql.Node) (mutation, bool) {
	switch n := n.(type) {
	case *plan.InsertInto:
		return n, true
	case *plan.Update:
		return n, true
	case *plan.DeleteFrom:
		return n, true
	case *plan.CreateTable:
		return n, true
	}
	return nil, false
}

// mutatedTable names the table a mutation targets.
func mutatedTable(n mutation) string {
	switch n := n.(type) {
	case *plan.InsertInto:
		return nodeTableName(n.Left)
	case *plan.Update:
		return nodeTableName(n.Child)
	case *plan.DeleteFrom:
		return nodeTableName(n.Child)
	case *plan.CreateTable:
		return n.Name()
	}
	return ""
}

func nodeTableName(n sql.Node) string {
	if t, ok := n.(sql.Nameable); ok {
		return t.Name()
	}
	return ""
}
