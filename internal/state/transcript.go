package state

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptEntry is one decide cycle as seen by the app layer.
type TranscriptEntry struct {
	ID           string
	CreatedAt    string
	Source       string // "text" | "stt"
	Input        string
	Spoken       string
	Action       string
	NeedsConfirm bool
}

func (db *DB) AppendTranscript(e TranscriptEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt == "" {
		e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	needs := 0
	if e.NeedsConfirm {
		needs = 1
	}
	_, err := db.Exec(
		`INSERT INTO transcript(id, created_at, source, input, spoken, action, needs_confirm)
		 VALUES(?,?,?,?,?,?,?)`,
		e.ID, e.CreatedAt, e.Source, e.Input, e.Spoken, e.Action, needs,
	)
	return err
}

// LastSpoken returns the most recent non-empty spoken reply.
func (db *DB) LastSpoken() (string, bool) {
	var spoken string
	err := db.QueryRow(
		`SELECT spoken FROM transcript WHERE spoken != '' ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&spoken)
	if err != nil {
		return "", false
	}
	return spoken, true
}
