// Package sql provides the core elements of the query engine: the value
// and type system, rows and row iterators, the expression and plan node
// contracts, and the session context threaded through execution.
package sql

import "fmt"

// Nameable is something that has a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Resolvable is something that can be resolved or not.
type Resolvable interface {
	// Resolved returns whether the node is resolved.
	Resolved() bool
}

// Expression is a combination of one or more SQL expressions.
type Expression interface {
	Resolvable
	fmt.Stringer
	// Eval evaluates the expression against the given row.
	Eval(ctx *Context, row Row) (Value, error)
	// Children returns the children expressions of this expression.
	Children() []Expression
	// TransformUp transforms the expression and its children, bottom up.
	TransformUp(fn TransformExprFunc) (Expression, error)
}

// TransformNodeFunc is a function that given a node returns it as is or
// transformed.
type TransformNodeFunc func(Node) (Node, error)

// TransformExprFunc is a function that given an expression returns it as
// is or transformed.
type TransformExprFunc func(Expression) (Expression, error)

// Aggregation is an expression that consumes the rows of a group and
// produces a single value.
type Aggregation interface {
	Expression
	// NewBuffer creates a fresh accumulation buffer for one group.
	NewBuffer() AggregationBuffer
}

// AggregationBuffer accumulates the rows of one group.
type AggregationBuffer interface {
	// Update accumulates one row into the buffer.
	Update(ctx *Context, row Row) error
	// Eval returns the aggregated value for the group.
	Eval(ctx *Context) (Value, error)
}

// Node is a node of the execution plan tree.
type Node interface {
	Resolvable
	fmt.Stringer
	// Schema of the node.
	Schema() Schema
	// Children nodes.
	Children() []Node
	// RowIter produces a row iterator from this node.
	RowIter(ctx *Context) (RowIter, error)
	// TransformUp transforms the node and its children, bottom up.
	TransformUp(fn TransformNodeFunc) (Node, error)
	// TransformExpressionsUp transforms the expressions contained in the
	// node and its children, bottom up.
	TransformExpressionsUp(fn TransformExprFunc) (Node, error)
}

// Expressioner is a node that holds expressions.
type Expressioner interface {
	// Expressions returns the expressions of the node.
	Expressions() []Expression
	// TransformExpressions applies the transformation function to the
	// expressions of this node only, not to its children.
	TransformExpressions(fn TransformExprFunc) (Node, error)
}

// Table represents a readable relation.
type Table interface {
	Nameable
	// Schema returns the columns of the table.
	Schema() Schema
	// RowIter returns an iterator over the rows of the table.
	RowIter(ctx *Context) (RowIter, error)
}

// Inserter is a table that can have rows appended.
type Inserter interface {
	// Insert appends the given row.
	Insert(row Row) error
}

// Updater is a table whose rows can be rewritten in place.
type Updater interface {
	// SetRow replaces the row at the given position.
	SetRow(index int, row Row) error
}

// Deleter is a table whose rows can be removed.
type Deleter interface {
	// RemoveRows removes the rows at the given positions.
	RemoveRows(indices []int) error
}

// DirtyTracker tracks in-memory modifications of a table since it was
// loaded, so writeback can rewrite only what changed.
type DirtyTracker interface {
	// MarkDirty flags the table as modified.
	MarkDirty()
	// IsDirty reports whether the table was modified since load or last
	// save.
	IsDirty() bool
}

// Database represents the collection of tables owned by a session.
type Database interface {
	Nameable
	// Tables returns the tables of the database, keyed by table name.
	Tables() map[string]Table
}

// CreateTableOptions carries the storage metadata of a table registered
// through CREATE TABLE.
type CreateTableOptions struct {
	// Location is the path the table will be saved to. Empty means the
	// table has no backing file yet.
	Location string
	// Delimiter is the field delimiter used on save. Zero means comma.
	Delimiter rune
}

// TableCreator is a database that can register new empty tables.
type TableCreator interface {
	Database
	// CreateTable registers a new empty table with the given columns.
	CreateTable(name string, schema Schema, opts CreateTableOptions) error
}
