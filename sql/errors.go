package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrTableNotFound is returned when the table is not available from the
	// current scope.
	ErrTableNotFound = errors.NewKind("table not found: %s")

	// ErrTableAlreadyExists is returned when a table with the given name
	// already exists on create.
	ErrTableAlreadyExists = errors.NewKind("table with name %s already exists")

	// ErrDatabaseNotFound is returned when the database is not found.
	ErrDatabaseNotFound = errors.NewKind("database not found: %s")

	// ErrColumnNotFound is returned when the column does not exist in any
	// table in scope.
	ErrColumnNotFound = errors.NewKind("column not found: %s")

	// ErrAmbiguousColumnName is returned when an unqualified column name
	// matches columns of more than one table.
	ErrAmbiguousColumnName = errors.NewKind("ambiguous column name %q, it's present in all these tables: %v")

	// ErrTypeMismatch is returned when an operation receives a value of a
	// variant it cannot operate on.
	ErrTypeMismatch = errors.NewKind("type mismatch: %s")

	// ErrDivisionByZero is returned on division by zero.
	ErrDivisionByZero = errors.NewKind("division by zero")

	// ErrColumnCountMismatch is returned when a row or insert arity does not
	// match the table's column count.
	ErrColumnCountMismatch = errors.NewKind("column count mismatch: %s")

	// ErrGroupingViolation is returned when a selected column is neither
	// grouped nor inside an aggregation.
	ErrGroupingViolation = errors.NewKind("column %q must appear in the GROUP BY clause or be used in an aggregate function")

	// ErrValidation is returned when a statement is well-formed but carries
	// an invalid argument, such as a negative LIMIT.
	ErrValidation = errors.NewKind("validation failed: %s")

	// ErrFunctionNotFound is returned when a function name cannot be
	// resolved.
	ErrFunctionNotFound = errors.NewKind("function not found: %s")

	// ErrInvalidArgumentNumber is returned when the function is called with
	// the wrong number of arguments.
	ErrInvalidArgumentNumber = errors.NewKind("function %s expected %v arguments, %v received")
)
