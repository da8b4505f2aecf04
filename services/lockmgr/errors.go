package lockmgr

import "fmt"

// LockNotAvailableError means the caller tried to use a lock that is absent,
// already consumed, or cancelled. This is a protocol violation by the caller,
// not a transient condition.
type LockNotAvailableError struct {
	RoomCode string
	Reason   string
}

func (e *LockNotAvailableError) Error() string {
	return fmt.Sprintf("no usable lock for room %s: %s", e.RoomCode, e.Reason)
}

// LockExpiredError means the lock's TTL elapsed between issuance and use.
// Price and availability are no longer guaranteed; the caller must restart
// from search.
type LockExpiredError struct {
	RoomCode string
}

func (e *LockExpiredError) Error() string {
	return fmt.Sprintf("price lock for room %s has expired, search again", e.RoomCode)
}
