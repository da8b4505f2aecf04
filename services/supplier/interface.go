package supplier

import "context"

// Client is the outbound interface to the hotel inventory supplier. Call
// issues one authenticated request and returns the raw response body. A 204
// response is a success with an empty (non-nil) body. Auth rejections are
// retried once after a token refresh; every other error status surfaces as a
// SupplierError and is never retried here.
type Client interface {
	Call(ctx context.Context, method, endpoint string, body any) ([]byte, error)
}
