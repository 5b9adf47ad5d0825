// Package aggregation implements the aggregation functions usable in
// grouped queries, along with their DISTINCT variants.
package aggregation

import (
	"github.com/mitchellh/hashstructure"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrEvalOutsideGroup is returned when an aggregation function is
// evaluated as a plain row expression instead of through its buffer.
var ErrEvalOutsideGroup = errors.NewKind("aggregation function %s cannot be evaluated outside a group")

// hashOf hashes the value structurally: a DISTINCT set distinguishes the
// integer 1 from the float 1.0, they are different Values.
func hashOf(v sql.Value) (uint64, error) {
	return hashstructure.Hash(v, nil)
}

func hashOfRow(row sql.Row) (uint64, error) {
	return hashstructure.Hash(row, nil)
}

// seen tracks the values already accumulated by a DISTINCT buffer.
type seen map[uint64]struct{}

// add records the given hash and reports whether it was already present.
func (s seen) add(hash uint64) bool {
	if _, ok := s[hash]; ok {
		return true
	}
	s[hash] = struct{}{}
	return false
}
