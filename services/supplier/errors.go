package supplier

import "fmt"

// SupplierError is a well-formed HTTP error from the upstream supplier. The
// original status and body are kept for caller diagnostics.
type SupplierError struct {
	Status int
	Body   string
}

func (e *SupplierError) Error() string {
	return fmt.Sprintf("supplier returned %d: %s", e.Status, e.Body)
}

// AuthExhaustedError means token refresh failed to restore access twice in a
// row. Fatal for the current call; the caller may retry later.
type AuthExhaustedError struct {
	Endpoint string
}

func (e *AuthExhaustedError) Error() string {
	return fmt.Sprintf("supplier auth exhausted for %s: token refresh did not restore access", e.Endpoint)
}
