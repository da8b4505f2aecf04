package booking

import (
	"time"

	"stayhub/models"
)

// Legal transitions of a booking transaction. Failed is reachable from every
// non-terminal state; Cancelled only from Locked and GuestDetailsCollected.
var transitions = map[string][]string{
	models.TxSearching:             {models.TxLocked, models.TxFailed},
	models.TxLocked:                {models.TxGuestDetailsCollected, models.TxCancelled, models.TxFailed},
	models.TxGuestDetailsCollected: {models.TxPaymentAuthorized, models.TxCancelled, models.TxFailed},
	models.TxPaymentAuthorized:     {models.TxConfirmed, models.TxFailed},
}

// canTransition reports whether from -> to is a legal move.
func canTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// advance moves a transaction to the target state or rejects the move.
func advance(tx *models.BookingTransaction, to string, now time.Time) error {
	if !canTransition(tx.State, to) {
		return &InvalidTransitionError{From: tx.State, To: to}
	}
	tx.State = to
	tx.UpdatedAt = now
	return nil
}

// terminal reports whether a transaction can no longer move.
func terminal(state string) bool {
	switch state {
	case models.TxConfirmed, models.TxFailed, models.TxCancelled:
		return true
	}
	return false
}
