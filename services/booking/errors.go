package booking

import "fmt"

// InvalidTransitionError means the caller tried to move a transaction through
// an illegal state change. Deterministic; correct sequencing prevents it.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition: %s -> %s", e.From, e.To)
}

// TxNotFoundError means the transaction session is unknown or its TTL
// elapsed, which reads the same way from the cache.
type TxNotFoundError struct {
	TxID string
}

func (e *TxNotFoundError) Error() string {
	return fmt.Sprintf("booking transaction %s not found or expired", e.TxID)
}

// GuestValidationError carries the field-level reasons a guest record was
// rejected before payment.
type GuestValidationError struct {
	Reason string
}

func (e *GuestValidationError) Error() string {
	return fmt.Sprintf("guest details incomplete: %s", e.Reason)
}

// PaymentDeclinedError distinguishes a declined authorization from every
// other failure path so the storefront can say "payment declined" and not
// something generic.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}

// BookingRejectedError means the supplier answered the book call with a
// non-confirmed status. The transaction is Failed, never Confirmed.
type BookingRejectedError struct {
	Status string
}

func (e *BookingRejectedError) Error() string {
	return fmt.Sprintf("supplier did not confirm the booking (status %q)", e.Status)
}
