package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema for the ledger snapshot.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS ledger (
            position INTEGER PRIMARY KEY,
            payload TEXT NOT NULL
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
