package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	recordsRepo "stayhub/database/repository/records"
	"stayhub/models"
	"stayhub/services/booking"
	"stayhub/services/lockmgr"
	"stayhub/services/supplier"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// stubService lets each test pin the facade's behavior.
type stubService struct {
	searchFn  func(ctx context.Context, criteria models.SearchCriteria) ([]models.HotelResult, error)
	lockFn    func(ctx context.Context, roomCode string, offer models.RoomOffer) (*booking.LockResult, error)
	confirmFn func(ctx context.Context, txID string) (*models.BookingRecord, error)
	cancelFn  func(ctx context.Context, ref string) error
	getFn     func(ctx context.Context, bookingID string) (*models.BookingRecord, error)
}

func (s *stubService) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.HotelResult, error) {
	return s.searchFn(ctx, criteria)
}

func (s *stubService) Lock(ctx context.Context, roomCode string, offer models.RoomOffer) (*booking.LockResult, error) {
	return s.lockFn(ctx, roomCode, offer)
}

func (s *stubService) SubmitGuest(ctx context.Context, txID string, guest models.GuestDetails) (*models.BookingTransaction, error) {
	return nil, nil
}

func (s *stubService) AuthorizePayment(ctx context.Context, txID string, payment models.PaymentRequest) (*models.BookingTransaction, error) {
	return nil, nil
}

func (s *stubService) Confirm(ctx context.Context, txID string) (*models.BookingRecord, error) {
	return s.confirmFn(ctx, txID)
}

func (s *stubService) Cancel(ctx context.Context, ref string) error {
	return s.cancelFn(ctx, ref)
}

func (s *stubService) GetBooking(ctx context.Context, bookingID string) (*models.BookingRecord, error) {
	if s.getFn == nil {
		return nil, nil
	}
	return s.getFn(ctx, bookingID)
}

func perform(t *testing.T, svc booking.TransactionService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewBookingHandler(svc, zap.NewNop())
	router.POST("/api/search", h.Search)
	router.POST("/api/lock", h.Lock)
	router.POST("/api/booking/confirm", h.Confirm)
	router.GET("/api/booking/:ref", h.GetBooking)
	router.DELETE("/api/booking/:ref", h.Cancel)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearch_BadPayloadIs400(t *testing.T) {
	svc := &stubService{}
	w := perform(t, svc, http.MethodPost, "/api/search", `{"destination":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestConfirm_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"expired lock", &lockmgr.LockExpiredError{RoomCode: "R"}, http.StatusConflict},
		{"lock gone", &lockmgr.LockNotAvailableError{RoomCode: "R", Reason: "consumed"}, http.StatusConflict},
		{"tx unknown", &booking.TxNotFoundError{TxID: "t"}, http.StatusNotFound},
		{"bad transition", &booking.InvalidTransitionError{From: "locked", To: "confirmed"}, http.StatusConflict},
		{"payment declined", &booking.PaymentDeclinedError{Reason: "card"}, http.StatusPaymentRequired},
		{"supplier rejected", &booking.BookingRejectedError{Status: "pending"}, http.StatusBadGateway},
		{"auth exhausted", &supplier.AuthExhaustedError{Endpoint: "/book"}, http.StatusServiceUnavailable},
		{"upstream error", &supplier.SupplierError{Status: 500, Body: "boom"}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				confirmFn: func(ctx context.Context, txID string) (*models.BookingRecord, error) {
					return nil, tt.err
				},
			}
			w := perform(t, svc, http.MethodPost, "/api/booking/confirm", `{"txId":"tx-1"}`)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestConfirm_ReturnsRecord(t *testing.T) {
	svc := &stubService{
		confirmFn: func(ctx context.Context, txID string) (*models.BookingRecord, error) {
			return &models.BookingRecord{ID: "rec-1", SupplierID: "BK-1", Status: models.BookingConfirmed}, nil
		},
	}
	w := perform(t, svc, http.MethodPost, "/api/booking/confirm", `{"txId":"tx-1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"BK-1"`) {
		t.Errorf("body %q missing booking id", w.Body.String())
	}
}

func TestCancel_PassesReference(t *testing.T) {
	var got string
	svc := &stubService{
		cancelFn: func(ctx context.Context, ref string) error {
			got = ref
			return nil
		},
	}
	w := perform(t, svc, http.MethodDelete, "/api/booking/tx-9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got != "tx-9" {
		t.Errorf("cancel ref = %q, want tx-9", got)
	}
}

func TestGetBooking_MissingRecordIs404(t *testing.T) {
	svc := &stubService{
		getFn: func(ctx context.Context, bookingID string) (*models.BookingRecord, error) {
			return nil, recordsRepo.ErrNotFound
		},
	}
	w := perform(t, svc, http.MethodGet, "/api/booking/rec-404", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetBooking_BackendFailureIsNot404(t *testing.T) {
	svc := &stubService{
		getFn: func(ctx context.Context, bookingID string) (*models.BookingRecord, error) {
			return nil, errors.New("server selection timeout")
		},
	}
	w := perform(t, svc, http.MethodGet, "/api/booking/rec-1", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for a repository failure", w.Code)
	}
}

func TestLock_ReturnsLockResult(t *testing.T) {
	svc := &stubService{
		lockFn: func(ctx context.Context, roomCode string, offer models.RoomOffer) (*booking.LockResult, error) {
			return &booking.LockResult{TxID: "tx-1", Lock: models.PreBookLock{RoomCode: roomCode, LockToken: "LOCK-1"}}, nil
		},
	}
	w := perform(t, svc, http.MethodPost, "/api/lock", `{"roomCode":"RATE-123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"LOCK-1"`) {
		t.Errorf("body %q missing lock token", w.Body.String())
	}
}
