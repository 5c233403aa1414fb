// Package state owns the sqlite database backing the append-only note log
// and the decide transcript.
package state

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type DB struct{ *sql.DB }

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,

		// Raw ingested knowledge (read-file skill) and anything else the
		// skills append. Never updated, only appended.
		`CREATE TABLE IF NOT EXISTS notes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			text TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at);`,

		// One row per decide cycle: what came in, what was spoken, what
		// symbolic action (if any) was relayed to the executor.
		`CREATE TABLE IF NOT EXISTS transcript (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			input TEXT NOT NULL,
			spoken TEXT NOT NULL,
			action TEXT NOT NULL,
			needs_confirm INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transcript_created_at ON transcript(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
