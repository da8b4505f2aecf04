package models

import "time"

// Lock lifecycle states as tracked by the lock manager.
const (
	LockStateLocked    = "locked"
	LockStateConsumed  = "consumed"
	LockStateCancelled = "cancelled"
)

// PreBookLock is a time-boxed reservation that freezes price and availability
// for a room offer before final payment. At most one live lock exists per
// room code; the lock is one-shot and is destroyed on expiry, cancellation or
// successful booking.
type PreBookLock struct {
	RoomCode    string    `json:"roomCode"`
	LockToken   string    `json:"lockToken"`
	LockedPrice float64   `json:"lockedPrice"`
	Currency    string    `json:"currency"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Live reports whether the lock is still usable at the given instant.
// ExpiresAt is the sole authority on validity.
func (l *PreBookLock) Live(now time.Time) bool {
	return l.State == LockStateLocked && now.Before(l.ExpiresAt)
}
