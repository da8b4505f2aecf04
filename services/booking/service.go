package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	recordsRepo "stayhub/database/repository/records"
	"stayhub/models"
	"stayhub/services/lockmgr"
	"stayhub/services/normalize"
	"stayhub/services/supplier"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTransactionService implements TransactionService by composing the
// supplier client, the lock manager, the session store, the payment handler
// and the booking record archive.
type DefaultTransactionService struct {
	Supplier supplier.Client
	Locks    *lockmgr.Manager
	Sessions SessionStore
	Payments PaymentHandler
	Records  recordsRepo.BookingRecordRepository
	Logger   *zap.Logger

	// now is the clock source, overridable in tests.
	now func() time.Time
}

// NewTransactionService wires the facade together.
func NewTransactionService(
	client supplier.Client,
	locks *lockmgr.Manager,
	sessions SessionStore,
	payments PaymentHandler,
	records recordsRepo.BookingRecordRepository,
	logger *zap.Logger,
) *DefaultTransactionService {
	return &DefaultTransactionService{
		Supplier: client,
		Locks:    locks,
		Sessions: sessions,
		Payments: payments,
		Records:  records,
		Logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the clock source. Used by tests.
func (s *DefaultTransactionService) SetClock(now func() time.Time) {
	s.now = now
}

// Search runs a supplier search and returns canonical hotel results. The
// results are owned by the caller; nothing is retained here.
func (s *DefaultTransactionService) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.HotelResult, error) {
	raw, err := s.Supplier.Call(ctx, http.MethodPost, "/search", criteria)
	if err != nil {
		return nil, err
	}
	results, err := normalize.NormalizeSearch(raw)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("search completed",
		zap.String("destination", criteria.Destination),
		zap.Int("hotels", len(results)))
	return results, nil
}

// Lock freezes price and availability for a room offer and opens a booking
// transaction around the lock. Locking the same room again while the lock is
// live reuses it without another supplier call.
func (s *DefaultTransactionService) Lock(ctx context.Context, roomCode string, offer models.RoomOffer) (*LockResult, error) {
	if roomCode == "" {
		return nil, &GuestValidationError{Reason: "roomCode is required"}
	}
	offer.Code = roomCode

	lock, err := s.Locks.Acquire(ctx, roomCode, offer)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tx := &models.BookingTransaction{
		TxID:      uuid.New().String(),
		State:     models.TxLocked,
		RoomCode:  roomCode,
		Room:      offer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Sessions.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.Logger.Info("transaction locked",
		zap.String("txId", tx.TxID), zap.String("roomCode", roomCode))
	return &LockResult{TxID: tx.TxID, Lock: *lock}, nil
}

// SubmitGuest attaches a validated guest record to the transaction and
// advances it to GuestDetailsCollected.
func (s *DefaultTransactionService) SubmitGuest(ctx context.Context, txID string, guest models.GuestDetails) (*models.BookingTransaction, error) {
	tx, err := s.Sessions.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := validateGuest(guest); err != nil {
		return nil, err
	}
	// The lock must still be live to keep collecting details against it.
	if _, err := s.Locks.Get(tx.RoomCode); err != nil {
		return nil, err
	}
	if err := advance(tx, models.TxGuestDetailsCollected, s.now()); err != nil {
		return nil, err
	}
	tx.Guest = &guest
	if err := s.Sessions.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// AuthorizePayment authorizes payment for the locked price and advances the
// transaction to PaymentAuthorized. A complete guest record is a hard
// precondition.
func (s *DefaultTransactionService) AuthorizePayment(ctx context.Context, txID string, payment models.PaymentRequest) (*models.BookingTransaction, error) {
	tx, err := s.Sessions.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.State != models.TxGuestDetailsCollected || tx.Guest == nil {
		return nil, &InvalidTransitionError{From: tx.State, To: models.TxPaymentAuthorized}
	}

	lock, err := s.Locks.Get(tx.RoomCode)
	if err != nil {
		return nil, err
	}
	if payment.Amount == 0 {
		payment.Amount = lock.LockedPrice
	}
	if payment.Currency == "" {
		payment.Currency = lock.Currency
	}

	paymentID, err := s.Payments.Authorize(ctx, payment)
	if err != nil {
		return nil, err
	}

	if err := advance(tx, models.TxPaymentAuthorized, s.now()); err != nil {
		return nil, err
	}
	tx.PaymentID = paymentID
	if err := s.Sessions.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Confirm consumes the live lock and issues the final booking call. The book
// endpoint is never reached without a consumed live lock; an expired lock
// fails the transaction before any network traffic. A supplier status other
// than confirmed routes to Failed, never Confirmed. A transient failure of
// the book call (timeout, 5xx, auth outage) restores the lock and leaves the
// transaction in PaymentAuthorized, so the caller can retry Confirm with the
// same transaction id; the book request's idempotency key makes the retry
// safe and the lock's own expiry stays the authority on validity.
func (s *DefaultTransactionService) Confirm(ctx context.Context, txID string) (*models.BookingRecord, error) {
	tx, err := s.Sessions.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.State != models.TxPaymentAuthorized || tx.Guest == nil {
		return nil, &InvalidTransitionError{From: tx.State, To: models.TxConfirmed}
	}

	lock, err := s.Locks.Consume(tx.RoomCode)
	if err != nil {
		s.fail(ctx, tx)
		return nil, err
	}

	raw, callErr := s.Supplier.Call(ctx, http.MethodPost, "/book", bookRequest(tx, lock))
	if callErr != nil {
		if definitiveBookRejection(callErr) {
			s.fail(ctx, tx)
			return nil, callErr
		}
		s.restoreForRetry(tx.RoomCode)
		return nil, callErr
	}

	record, err := normalize.NormalizeBook(raw)
	if err != nil {
		// The call went through but the outcome is unreadable. Keep the
		// retry path open; the idempotency key prevents a double booking.
		s.restoreForRetry(tx.RoomCode)
		return nil, err
	}

	record.Room = tx.Room
	record.Lock = *lock
	record.Guest = *tx.Guest
	record.CreatedAt = s.now()

	if record.Status != models.BookingConfirmed {
		s.fail(ctx, tx)
		s.archive(ctx, record)
		return record, &BookingRejectedError{Status: record.Status}
	}

	if err := advance(tx, models.TxConfirmed, s.now()); err != nil {
		return nil, err
	}
	s.archive(ctx, record)
	if err := s.Sessions.Delete(ctx, tx.TxID); err != nil {
		s.Logger.Warn("failed to drop confirmed transaction session",
			zap.String("txId", tx.TxID), zap.Error(err))
	}

	s.Logger.Info("booking confirmed",
		zap.String("txId", tx.TxID),
		zap.String("bookingId", record.SupplierID))
	return record, nil
}

// Cancel releases a transaction's lock and closes it, or cancels an archived
// booking by id. Cancellation frees upstream inventory promptly instead of
// letting the lock run out.
func (s *DefaultTransactionService) Cancel(ctx context.Context, ref string) error {
	tx, err := s.Sessions.Get(ctx, ref)
	if err == nil {
		if err := advance(tx, models.TxCancelled, s.now()); err != nil {
			return err
		}
		if relErr := s.Locks.Release(ctx, tx.RoomCode); relErr != nil {
			var notAvail *lockmgr.LockNotAvailableError
			if !errors.As(relErr, &notAvail) {
				return relErr
			}
		}
		if err := s.Sessions.Delete(ctx, tx.TxID); err != nil {
			s.Logger.Warn("failed to drop cancelled transaction session",
				zap.String("txId", tx.TxID), zap.Error(err))
		}
		s.Logger.Info("transaction cancelled", zap.String("txId", tx.TxID))
		return nil
	}

	var notFound *TxNotFoundError
	if !errors.As(err, &notFound) {
		return err
	}

	// Not a live transaction: treat the reference as a booking id.
	record, rerr := s.Records.GetByID(ctx, ref)
	if errors.Is(rerr, recordsRepo.ErrNotFound) {
		return &TxNotFoundError{TxID: ref}
	}
	if rerr != nil {
		return rerr
	}
	endpoint := "/cancel?bookingId=" + url.QueryEscape(record.SupplierID)
	if _, cerr := s.Supplier.Call(ctx, http.MethodDelete, endpoint, nil); cerr != nil {
		s.Logger.Warn("upstream booking cancellation failed",
			zap.String("bookingId", record.SupplierID), zap.Error(cerr))
	}
	s.Logger.Info("booking cancelled", zap.String("bookingId", record.SupplierID))
	return nil
}

// GetBooking looks an archived booking record up by id.
func (s *DefaultTransactionService) GetBooking(ctx context.Context, bookingID string) (*models.BookingRecord, error) {
	return s.Records.GetByID(ctx, bookingID)
}

// definitiveBookRejection reports whether a book call error settles the
// outcome. A 4xx is a rejection of this request; timeouts, 5xx and auth
// outages leave the booking retryable under the same idempotency key.
func definitiveBookRejection(err error) bool {
	var supErr *supplier.SupplierError
	return errors.As(err, &supErr) && supErr.Status < 500
}

// restoreForRetry returns the consumed lock to the locked state so Confirm
// can be retried with the same transaction id.
func (s *DefaultTransactionService) restoreForRetry(roomCode string) {
	if err := s.Locks.Restore(roomCode); err != nil {
		s.Logger.Warn("could not restore lock for retry",
			zap.String("roomCode", roomCode), zap.Error(err))
	}
}

// fail moves a transaction to Failed and persists it best effort. Terminal
// states stay as they are.
func (s *DefaultTransactionService) fail(ctx context.Context, tx *models.BookingTransaction) {
	if terminal(tx.State) {
		return
	}
	tx.State = models.TxFailed
	tx.UpdatedAt = s.now()
	if err := s.Sessions.Save(ctx, tx); err != nil {
		s.Logger.Warn("failed to persist failed transaction",
			zap.String("txId", tx.TxID), zap.Error(err))
	}
}

// archive stores the booking record best effort; the confirmed booking stands
// even if the archive write fails.
func (s *DefaultTransactionService) archive(ctx context.Context, record *models.BookingRecord) {
	if s.Records == nil {
		return
	}
	id, err := s.Records.Create(ctx, *record)
	if err != nil {
		s.Logger.Error("failed to archive booking record",
			zap.String("bookingId", record.SupplierID), zap.Error(err))
		return
	}
	record.ID = id
}

// bookRequest assembles the final booking call. The transaction id doubles as
// the idempotency key so a timed-out call can be retried safely.
func bookRequest(tx *models.BookingTransaction, lock *models.PreBookLock) map[string]any {
	req := map[string]any{
		"idempotencyKey": tx.TxID,
		"roomCode":       tx.RoomCode,
		"guest": map[string]any{
			"firstName": tx.Guest.FirstName,
			"lastName":  tx.Guest.LastName,
			"email":     tx.Guest.Email,
			"phone":     tx.Guest.Phone,
		},
	}
	if lock.LockToken != "" {
		req["token"] = lock.LockToken
	}
	if len(tx.Room.Raw) > 0 {
		req["jsonRequest"] = json.RawMessage(tx.Room.Raw)
	}
	return req
}
