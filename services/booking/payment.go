package booking

import (
	"context"
	"errors"
	"strings"

	"stayhub/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentHandler authorizes a payment for a booking transaction and returns
// the authorization id. Capture happens outside this engine once the supplier
// confirms.
type PaymentHandler interface {
	Authorize(ctx context.Context, req models.PaymentRequest) (string, error)
}

// StripePaymentHandler authorizes card payments through Stripe using
// manual-capture payment intents. Pay-at-hotel bookings skip Stripe entirely.
type StripePaymentHandler struct {
	logger *zap.Logger
}

// NewStripePaymentHandler builds the default payment handler.
func NewStripePaymentHandler(logger *zap.Logger) *StripePaymentHandler {
	return &StripePaymentHandler{logger: logger}
}

func (h *StripePaymentHandler) Authorize(ctx context.Context, req models.PaymentRequest) (string, error) {
	if err := validatePaymentRequest(req); err != nil {
		return "", err
	}

	if req.Method == "pay_at_hotel" {
		h.logger.Info("payment deferred to property", zap.Float64("amount", req.Amount))
		return "onsite", nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(req.Amount * 100)),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod: stripe.String(req.CardToken),
		Confirm:       stripe.Bool(true),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return "", &PaymentDeclinedError{Reason: stripeErr.Msg}
		}
		return "", err
	}
	if pi.Status != stripe.PaymentIntentStatusRequiresCapture {
		return "", &PaymentDeclinedError{Reason: "authorization not completed: " + string(pi.Status)}
	}

	h.logger.Info("payment authorized",
		zap.String("paymentIntent", pi.ID),
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency))
	return pi.ID, nil
}

func validatePaymentRequest(req models.PaymentRequest) error {
	if req.Amount <= 0 {
		return &PaymentDeclinedError{Reason: "invalid payment amount"}
	}
	switch req.Method {
	case "card":
		if req.CardToken == "" {
			return &PaymentDeclinedError{Reason: "missing card token"}
		}
	case "pay_at_hotel":
	default:
		return &PaymentDeclinedError{Reason: "unsupported payment method " + req.Method}
	}
	return nil
}
