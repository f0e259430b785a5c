package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLiteBackend keeps the snapshot as ordered rows in the ledger table,
// one JSON payload per sale. A whole-snapshot write replaces every row
// inside a single transaction.
type SQLiteBackend struct {
	db *sqlx.DB
}

// NewSQLiteBackend constructs a SQLiteBackend over an open database.
// The ledger table must already exist (see internal/migrations).
func NewSQLiteBackend(db *sqlx.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

func (b *SQLiteBackend) Read() ([]byte, error) {
	var payloads []string
	if err := b.db.Select(&payloads, `SELECT payload FROM ledger ORDER BY position ASC`); err != nil {
		return nil, fmt.Errorf("read ledger rows: %w", err)
	}
	if len(payloads) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, payload := range payloads {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(payload)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (b *SQLiteBackend) Write(data []byte) error {
	var payloads []json.RawMessage
	if err := json.Unmarshal(data, &payloads); err != nil {
		return fmt.Errorf("split snapshot: %w", err)
	}

	tx, err := b.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin snapshot write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ledger`); err != nil {
		return fmt.Errorf("clear ledger rows: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO ledger (position, payload) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for i, payload := range payloads {
		if _, err := stmt.Exec(i, string(payload)); err != nil {
			return fmt.Errorf("insert ledger row %d: %w", i, err)
		}
	}

	return tx.Commit()
}
