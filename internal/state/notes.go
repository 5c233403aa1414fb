package state

import (
	"strings"
	"time"
)

type Note struct {
	ID        int64
	CreatedAt string
	Text      string
}

func (db *DB) AddNote(text string) error {
	t := strings.TrimSpace(text)
	if t == "" {
		return nil
	}
	_, err := db.Exec(
		`INSERT INTO notes(created_at, text) VALUES(?,?)`,
		time.Now().UTC().Format(time.RFC3339),
		t,
	)
	return err
}

// RecentNotes returns up to limit notes, oldest first.
func (db *DB) RecentNotes(limit int) ([]Note, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := db.Query(
		`SELECT id, created_at, text FROM notes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.CreatedAt, &n.Text); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// query is newest-first for the LIMIT; callers want reading order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
