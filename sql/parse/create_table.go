package parse

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-vitess.v1/vt/sqlparser"

	"github.com/delimsql/delimsql/sql"
	"github.com/delimsql/delimsql/sql/plan"
)

// parseCreateTable handles CREATE TABLE statements, which extend the
// standard form with storage clauses the vitess grammar does not know:
//
//	CREATE TABLE name (col type, ...)
//	    [LOCATION '<path>']
//	    [WITH (DELIMITER '<char>')]
//
// The statement is split at the end of the column list; the head goes
// through the regular SQL parser and the tail through a small hand
// written one.
func parseCreateTable(s string) (sql.Node, error) {
	head, tail := splitCreateTable(s)

	stmt, err := sqlparser.Parse(head)
	if err != nil {
		return nil, err
	}

	c, ok := stmt.(*sqlparser.DDL)
	if !ok || c.Action != sqlparser.CreateStr {
		return nil, ErrUnsupportedSyntax.New(stmt)
	}

	if c.TableSpec == nil {
		return nil, ErrUnsupportedSyntax.New(c)
	}

	schema, err := columnDefinitionsToSchema(c.TableSpec.Columns)
	if err != nil {
		return nil, err
	}

	opts, err := parseTableOptions(tail)
	if err != nil {
		return nil, err
	}

	return plan.NewCreateTable(
		sql.UnresolvedDatabase(""),
		c.Table.Name.String(),
		schema,
		opts,
	), nil
}

// splitCreateTable returns the statement up to the closing parenthesis
// of the column list, and whatever follows it. When there is no column
// list to split at, the whole statement is the head and the SQL parser
// reports the syntax error.
func splitCreateTable(s string) (string, string) {
	var (
		depth   int
		quote   rune
		escaped bool
	)

	for i, ru := range s {
		if escaped {
			escaped = false
			continue
		}

		switch {
		case quote != 0:
			if ru == '\\' {
				escaped = true
			} else if ru == quote {
				quote = 0
			}
		case ru == '\'' || ru == '"':
			quote = ru
		case ru == '(':
			depth++
		case ru == ')':
			depth--
			if depth == 0 {
				return s[:i+1], s[i+1:]
			}
		}
	}

	return s, ""
}

func columnDefinitionsToSchema(colDef []*sqlparser.ColumnDefinition) (sql.Schema, error) {
	var schema sql.Schema
	for _, cd := range colDef {
		declared := cd.Type.Type
		typ, known := sql.ParseColumnType(declared)
		if !known {
			logrus.WithFields(logrus.Fields{
				"column": cd.Name.String(),
				"type":   declared,
			}).Warn("unknown column type, defaulting to TEXT")
		}

		schema = append(schema, sql.Column{
			Name: cd.Name.String(),
			Type: typ,
		})
	}

	return schema, nil
}

// parseTableOptions parses the storage clauses following the column
// list. Both clauses are optional and may appear in any order.
func parseTableOptions(tail string) (sql.CreateTableOptions, error) {
	var opts sql.CreateTableOptions

	rd := bufio.NewReader(strings.NewReader(tail))
	for {
		if err := skipSpaces(rd); err != nil {
			return opts, err
		}

		var clause string
		if err := readIdent(&clause)(rd); err != nil {
			return opts, err
		}

		if clause == "" {
			return opts, nil
		}

		switch clause {
		case "location":
			var location string
			steps := []parseFunc{
				skipSpaces,
				readQuoted(&location),
			}
			for _, step := range steps {
				if err := step(rd); err != nil {
					return opts, err
				}
			}

			opts.Location = location
		case "with":
			var delimiter string
			steps := []parseFunc{
				skipSpaces,
				expectRune('('),
				skipSpaces,
				expect("delimiter"),
				skipSpaces,
				readQuoted(&delimiter),
				skipSpaces,
				expectRune(')'),
			}
			for _, step := range steps {
				if err := step(rd); err != nil {
					return opts, err
				}
			}

			d, err := delimiterRune(delimiter)
			if err != nil {
				return opts, err
			}

			opts.Delimiter = d
		default:
			return opts, errUnexpectedSyntax.New("LOCATION or WITH", clause)
		}
	}
}

// delimiterRune validates a declared field delimiter. The two character
// sequence \t declares a tab.
func delimiterRune(d string) (rune, error) {
	if d == `\t` {
		return '\t', nil
	}

	runes := []rune(d)
	if len(runes) != 1 {
		return 0, sql.ErrValidation.New(fmt.Sprintf("delimiter must be a single character, got %q", d))
	}

	return runes[0], nil
}
