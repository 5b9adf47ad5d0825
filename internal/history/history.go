// Package history persists the statements typed into the interactive
// shell, so later sessions can list what earlier ones ran.
package history

import (
	"encoding/binary"

	"github.com/boltdb/bolt"
)

var bucketName = []byte("history")

// History is an append-only statement log backed by a bolt database.
type History struct {
	db *bolt.DB
}

// Open opens the history database at the given path, creating it if
// needed.
func Open(path string) (*History, error) {
	db, err := bolt.Open(path, 0640, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &History{db: db}, nil
}

// Close closes the backing database.
func (h *History) Close() error {
	return h.db.Close()
}

// Add appends a statement to the history.
func (h *History) Add(statement string) error {
	return h.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		// Big-endian keys keep the bucket in insertion order.
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return b.Put(key[:], []byte(statement))
	})
}

// Last returns up to n statements ending with the most recent, oldest
// first. n <= 0 returns the whole history.
func (h *History) Last(n int) ([]string, error) {
	var statements []string
	err := h.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()

		if n <= 0 {
			for k, v := c.First(); k != nil; k, v = c.Next() {
				statements = append(statements, string(v))
			}
			return nil
		}

		for k, v := c.Last(); k != nil && len(statements) < n; k, v = c.Prev() {
			statements = append(statements, string(v))
		}

		// Walking backwards collected newest first.
		for i, j := 0, len(statements)-1; i < j; i, j = i+1, j-1 {
			statements[i], statements[j] = statements[j], statements[i]
		}
		return nil
	})
	return statements, err
}

// Len returns the number of stored statements.
func (h *History) Len() (int, error) {
	var n int
	err := h.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n, err
}
