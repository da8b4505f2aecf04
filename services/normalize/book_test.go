package normalize

import (
	"errors"
	"testing"

	"stayhub/models"
)

func TestNormalizeBook_ConfirmedStatus(t *testing.T) {
	record, err := NormalizeBook([]byte(`{"status":"confirmed","bookingId":"BK-1","reference":"REF-9"}`))
	if err != nil {
		t.Fatalf("NormalizeBook error: %v", err)
	}
	if record.Status != models.BookingConfirmed {
		t.Errorf("Status = %q, want confirmed", record.Status)
	}
	if record.SupplierID != "BK-1" || record.Reference != "REF-9" {
		t.Errorf("record = %+v, want BK-1 / REF-9", record)
	}
}

func TestNormalizeBook_AnyOtherStatusIsFailure(t *testing.T) {
	for _, status := range []string{"pending", "rejected", "error", ""} {
		record, err := NormalizeBook([]byte(`{"status":"` + status + `","bookingId":"BK-2"}`))
		if err != nil {
			t.Fatalf("status %q: NormalizeBook error: %v", status, err)
		}
		if record.Status != models.BookingFailed {
			t.Errorf("status %q: got %q, want failed", status, record.Status)
		}
	}
}

func TestNormalizeBook_NestedDataShape(t *testing.T) {
	record, err := NormalizeBook([]byte(`{"data":{"status":"confirmed","id":"BK-3"}}`))
	if err != nil {
		t.Fatalf("NormalizeBook error: %v", err)
	}
	if record.Status != models.BookingConfirmed || record.SupplierID != "BK-3" {
		t.Errorf("record = %+v, want confirmed BK-3", record)
	}
}

func TestNormalizeBook_InvalidJSONIsNormalizeError(t *testing.T) {
	_, err := NormalizeBook([]byte("definitely not json"))
	var ne *NormalizeError
	if !errors.As(err, &ne) {
		t.Fatalf("got %v, want NormalizeError", err)
	}
}
