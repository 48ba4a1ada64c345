package trash

import "time"

const (
	// RetentionWindow is how long a trashed task stays restorable.
	RetentionWindow = 10 * day

	// ExpiringSoonDays is the days-remaining threshold at or below which an
	// entry is flagged as expiring soon.
	ExpiringSoonDays = 3

	day = 24 * time.Hour
)

// DaysRemaining is ceil((ExpiresAt - now) / 24h).
func (e *Entry) DaysRemaining(now time.Time) int {
	d := e.ExpiresAt.Sub(now)
	if d > 0 {
		return int((d + day - 1) / day)
	}
	// Truncation toward zero is the ceiling for non-positive values.
	return int(d / day)
}

// Expired reports whether the entry is eligible for automatic permanent
// deletion.
func (e *Entry) Expired(now time.Time) bool {
	return e.DaysRemaining(now) <= 0
}

func (e *Entry) ExpiringSoon(now time.Time) bool {
	return e.DaysRemaining(now) <= ExpiringSoonDays
}
