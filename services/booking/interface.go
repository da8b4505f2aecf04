package booking

import (
	"context"

	"stayhub/models"
)

// LockResult pairs a freshly opened transaction with its price lock.
type LockResult struct {
	TxID string             `json:"txId"`
	Lock models.PreBookLock `json:"lock"`
}

// TransactionService is the single entry point into the booking engine,
// shared by the storefront UI and the chat assistant. It drives a transaction
// through search, lock, guest details, payment and confirmation.
type TransactionService interface {
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.HotelResult, error)
	Lock(ctx context.Context, roomCode string, offer models.RoomOffer) (*LockResult, error)
	SubmitGuest(ctx context.Context, txID string, guest models.GuestDetails) (*models.BookingTransaction, error)
	AuthorizePayment(ctx context.Context, txID string, payment models.PaymentRequest) (*models.BookingTransaction, error)
	Confirm(ctx context.Context, txID string) (*models.BookingRecord, error)
	Cancel(ctx context.Context, ref string) error
	GetBooking(ctx context.Context, bookingID string) (*models.BookingRecord, error)
}
