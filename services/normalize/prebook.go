package normalize

import (
	"encoding/json"
	"fmt"

	"stayhub/models"
)

// PreBookStatusDone is the supplier's success sentinel for pre-book responses.
const PreBookStatusDone = "done"

// PreBookRejectedError means the supplier answered the pre-book call with a
// well-formed payload that does not signal success.
type PreBookRejectedError struct {
	Status string
}

func (e *PreBookRejectedError) Error() string {
	if e.Status == "" {
		return "supplier rejected pre-book: no token and no success status"
	}
	return fmt.Sprintf("supplier rejected pre-book: status %q", e.Status)
}

// NormalizePreBook extracts the lock token and frozen price from a raw
// pre-book payload. The supplier varies its shape between flows, so the token
// and price are probed across several nesting levels. Success precedence:
// a token anywhere wins; otherwise status equal to the success sentinel keeps
// the lock valid with an empty token (some supplier flows issue none); an
// empty body (204) counts the same way. RoomCode, timestamps and state are
// the lock manager's to fill in.
func NormalizePreBook(raw []byte) (*models.PreBookLock, error) {
	if len(raw) == 0 {
		return &models.PreBookLock{}, nil
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &NormalizeError{Stage: "prebook", Err: err}
	}

	token := prebookToken(m)
	status := firstString(m, "status", "prebookStatus", "state")

	if token == "" && status != PreBookStatusDone {
		return nil, &PreBookRejectedError{Status: status}
	}

	lock := &models.PreBookLock{
		LockToken:   token,
		LockedPrice: prebookPrice(m),
		Currency:    prebookCurrency(m),
	}
	if lock.Currency == "" {
		lock.Currency = DefaultCurrency
	}
	return lock, nil
}

var prebookTokenKeys = []string{"token", "prebookToken", "prebookId", "prebook_id", "lockToken"}

func prebookToken(m map[string]any) string {
	if t := firstString(m, prebookTokenKeys...); t != "" {
		return t
	}
	for _, path := range [][]string{{"data"}, {"result"}, {"prebook"}, {"data", "prebook"}} {
		if nested, ok := dig(m, path...); ok {
			if t := firstString(nested, prebookTokenKeys...); t != "" {
				return t
			}
		}
	}
	return ""
}

var prebookPriceKeys = []string{"price", "amount", "totalPrice", "lockedPrice"}

func prebookPrice(m map[string]any) float64 {
	if p := firstNumber(m, prebookPriceKeys...); p > 0 {
		return p
	}
	for _, path := range [][]string{{"data"}, {"result"}, {"prebook"}, {"pricing"}} {
		if nested, ok := dig(m, path...); ok {
			if p := firstNumber(nested, prebookPriceKeys...); p > 0 {
				return p
			}
		}
	}
	return 0
}

func prebookCurrency(m map[string]any) string {
	if c := firstString(m, "currency", "currencyCode"); c != "" {
		return c
	}
	for _, path := range [][]string{{"data"}, {"result"}, {"prebook"}, {"pricing"}} {
		if nested, ok := dig(m, path...); ok {
			if c := firstString(nested, "currency", "currencyCode"); c != "" {
				return c
			}
		}
	}
	return ""
}
