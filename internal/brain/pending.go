package brain

import "time"

// PendingAction is the single confirmation slot. At most one exists at a
// time; while it does, every decision path except confirm/cancel/expiry is
// suppressed.
type PendingAction struct {
	Action    string
	Args      map[string]string
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether the confirmation window has passed. Expiry is
// detected lazily on the next decide call; nothing runs a timer for it.
func (p PendingAction) Expired(now time.Time) bool {
	return now.Sub(p.CreatedAt) > p.TTL
}
