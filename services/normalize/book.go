package normalize

import (
	"encoding/json"

	"stayhub/models"
)

// BookStatusConfirmed is the only supplier status that counts as a confirmed
// booking. Anything else, however well-formed, is a normalized failure.
const BookStatusConfirmed = "confirmed"

// NormalizeBook converts a raw book payload into a BookingRecord. It fails
// only when the payload is not JSON; a non-confirmed status yields a failed
// record, never an error, so the state machine routes it to Failed.
func NormalizeBook(raw []byte) (*models.BookingRecord, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &NormalizeError{Stage: "book", Err: err}
	}

	status := firstString(m, "status", "bookingStatus", "state")
	if nested, ok := dig(m, "data"); ok && status == "" {
		status = firstString(nested, "status", "bookingStatus")
		m = nested
	}

	record := &models.BookingRecord{
		SupplierID: firstString(m, "bookingId", "booking_id", "id"),
		Reference:  firstString(m, "reference", "bookingReference", "confirmationNumber"),
		Status:     models.BookingFailed,
	}
	if status == BookStatusConfirmed {
		record.Status = models.BookingConfirmed
	}
	return record, nil
}
