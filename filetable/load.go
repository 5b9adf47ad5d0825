package filetable

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

var (
	// ErrInvalidFileSpec is returned when a [table=]path argument cannot
	// be parsed.
	ErrInvalidFileSpec = errors.NewKind("invalid file specification: %s")

	// ErrInvalidDelimiter is returned when a field separator flag is not
	// a single character.
	ErrInvalidDelimiter = errors.NewKind("invalid delimiter %q, must be a single character")

	// ErrEmptyFile is returned when a file has no records to infer
	// columns from and no column names were given.
	ErrEmptyFile = errors.NewKind("file %s has no records to infer columns from")
)

// FileSpec names a file to load and the table it becomes.
type FileSpec struct {
	Table string
	Path  string
}

// ParseFileSpec parses a [table=]path argument. Without an explicit
// table name, the file name minus its extension is used.
func ParseFileSpec(spec string) (FileSpec, error) {
	if i := strings.IndexByte(spec, '='); i >= 0 {
		name, path := spec[:i], spec[i+1:]
		if name == "" || path == "" {
			return FileSpec{}, ErrInvalidFileSpec.New(spec)
		}
		return FileSpec{Table: name, Path: path}, nil
	}

	base := filepath.Base(spec)
	if base == "." || base == string(filepath.Separator) {
		return FileSpec{}, ErrInvalidFileSpec.New(spec)
	}

	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}

	return FileSpec{Table: name, Path: spec}, nil
}

// ParseDelimiter interprets the spelling of a field separator flag. The
// two-character sequence `\t` means tab; anything else must be a single
// character.
func ParseDelimiter(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}

	runes := []rune(s)
	if len(runes) != 1 {
		return 0, ErrInvalidDelimiter.New(s)
	}

	return runes[0], nil
}

// LoadOptions controls how a file is read into a table.
type LoadOptions struct {
	// Separator forces delimited mode with this rune. Zero picks the
	// format from the file extension: `.csv` is comma separated, anything
	// else is tab separated.
	Separator rune
	// Columns overrides header detection with explicit column names. The
	// file's first row is then data, and no header is written back.
	Columns []string
}

// LoadFile reads the file at path into a new table with the given name.
// Cells are parsed into values, so `42` loads as an integer and an
// empty field as NULL. Lines starting with # are skipped. Records
// shorter than the column list are padded with NULLs; longer records
// fail the load.
func LoadFile(name, path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sep := opts.Separator
	if sep == 0 {
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			sep = ','
		} else {
			sep = '\t'
		}
	}

	r := csv.NewReader(f)
	r.Comma = sep
	r.Comment = '#'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	columns := opts.Columns
	header := false
	if len(columns) == 0 {
		if len(records) == 0 {
			return nil, ErrEmptyFile.New(path)
		}

		if looksLikeData(records[0]) {
			columns = columnNames(len(records[0]))
		} else {
			columns, records = records[0], records[1:]
			header = true
		}
	}

	schema := make(sql.Schema, len(columns))
	for i, col := range columns {
		schema[i] = sql.Column{Name: col}
	}

	t, err := NewTable(name, schema)
	if err != nil {
		return nil, err
	}
	t.SetOrigin(Origin{Path: path, Delimiter: sep, Header: header})

	for n, record := range records {
		if len(record) > len(columns) {
			return nil, sql.ErrColumnCountMismatch.New(fmt.Sprintf(
				"record %d of %s has %d fields, expected %d",
				n+1, path, len(record), len(columns),
			))
		}

		if len(record) < len(columns) {
			logrus.WithFields(logrus.Fields{
				"file":   path,
				"record": n + 1,
			}).Warnf("short record padded with %d NULLs", len(columns)-len(record))
		}

		row := make(sql.Row, len(columns))
		for i := range row {
			if i < len(record) {
				row[i] = sql.ParseValue(record[i])
			} else {
				row[i] = sql.Null
			}
		}

		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// looksLikeData reports whether a first row is data rather than a
// header. System files like /etc/passwd have no header line; a field
// holding a number, a path, or a well-known account name gives them
// away.
func looksLikeData(fields []string) bool {
	for _, field := range fields {
		if strings.HasPrefix(field, "/") || field == "*" || field == "root" || field == "nobody" {
			return true
		}

		if _, err := strconv.Atoi(field); err == nil {
			return true
		}
	}
	return false
}

// columnNames generates n synthetic column names: a..z, aa, ab...
func columnNames(n int) []string {
	names := make([]string, n)
	for i := 0; i < n; i++ {
		var name string
		k := i
		for {
			name = string(rune('a'+k%26)) + name
			k /= 26
			if k == 0 {
				break
			}
			k--
		}
		names[i] = name
	}
	return names
}
