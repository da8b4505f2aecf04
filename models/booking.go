package models

import "time"

// Booking transaction states. A transaction walks
// Searching → Locked → GuestDetailsCollected → PaymentAuthorized → Confirmed,
// with Failed reachable from any non-terminal state and Cancelled only from
// Locked or GuestDetailsCollected.
const (
	TxSearching             = "searching"
	TxLocked                = "locked"
	TxGuestDetailsCollected = "guest_details_collected"
	TxPaymentAuthorized     = "payment_authorized"
	TxConfirmed             = "confirmed"
	TxFailed                = "failed"
	TxCancelled             = "cancelled"
)

// Booking record statuses.
const (
	BookingConfirmed = "confirmed"
	BookingFailed    = "failed"
)

// GuestDetails is the guest record collected before payment.
type GuestDetails struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,e164"`
}

// PaymentRequest carries the payment authorization input for a transaction.
type PaymentRequest struct {
	Method    string  `json:"method"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	CardToken string  `json:"cardToken,omitempty"`
}

// BookingRecord is the immutable result of a confirmed (or failed) booking
// transaction. Archived to Mongo after the terminal transition.
type BookingRecord struct {
	ID         string       `json:"id" bson:"id"`
	SupplierID string       `json:"supplierId" bson:"supplierId"`
	Reference  string       `json:"reference,omitempty" bson:"reference,omitempty"`
	Status     string       `json:"status" bson:"status"`
	Room       RoomOffer    `json:"room" bson:"room"`
	Lock       PreBookLock  `json:"lock" bson:"lock"`
	Guest      GuestDetails `json:"guest" bson:"guest"`
	CreatedAt  time.Time    `json:"createdAt" bson:"createdAt"`
}

// BookingTransaction is the per-transaction session snapshot persisted to the
// session cache between facade calls. One room, one guest, one attempt.
type BookingTransaction struct {
	TxID      string        `json:"txId"`
	State     string        `json:"state"`
	RoomCode  string        `json:"roomCode"`
	Room      RoomOffer     `json:"room"`
	Guest     *GuestDetails `json:"guest,omitempty"`
	PaymentID string        `json:"paymentId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
