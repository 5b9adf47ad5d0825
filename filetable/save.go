package filetable

import (
	"encoding/csv"
	"os"

	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/delimsql/delimsql/sql"
)

// ErrNoOrigin is returned when a table has no backing file to be saved
// to.
var ErrNoOrigin = errors.NewKind("table %s has no backing file to save to")

// Save writes the table back to its backing file and clears its dirty
// flag. The origin delimiter is reused, and a header line is written
// only when the original file had one.
func Save(t *Table) error {
	origin := t.Origin()
	if origin.Path == "" {
		return ErrNoOrigin.New(t.Name())
	}

	f, err := os.Create(origin.Path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Comma = origin.Delimiter

	if origin.Header {
		if err := w.Write(t.Schema().ColumnNames()); err != nil {
			_ = f.Close()
			return err
		}
	}

	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatField(v)
		}

		if err := w.Write(record); err != nil {
			_ = f.Close()
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	t.ClearDirty()
	logrus.WithFields(logrus.Fields{
		"table": t.Name(),
		"file":  origin.Path,
	}).Debug("table saved")

	return nil
}

// SaveDirty writes back every dirty table of the database, in name
// order, and returns the names of the tables saved. Clean tables are
// never rewritten.
func SaveDirty(db *Database) ([]string, error) {
	var saved []string
	for _, t := range db.DirtyTables() {
		if err := Save(t); err != nil {
			return saved, err
		}
		saved = append(saved, t.Name())
	}
	return saved, nil
}

// formatField renders one value as a file field. NULL is the empty
// field, so a round trip loads it back as NULL.
func formatField(v sql.Value) string {
	if v.IsNull() {
		return ""
	}
	return v.String()
}
