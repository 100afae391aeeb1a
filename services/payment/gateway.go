package payment

import (
	"context"
	"fmt"
	"time"

	"tutorhive/services/booking"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// gatewayTimeout bounds every call to the payment provider so a slow provider
// surfaces a retryable error instead of hanging the caller.
const gatewayTimeout = 10 * time.Second

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, bookingID string, metadata map[string]string) (intentID, clientSecret string, err error)
	GetIntentStatus(ctx context.Context, intentID string) (string, error)
	Refund(ctx context.Context, intentID string, amount int64, reason string) (refundID string, err error)
}

// StripeGateway implements PaymentGateway against Stripe. The API key is set
// process-wide at startup (stripe.Key).
type StripeGateway struct{}

// NewStripeGateway returns a gateway using the globally configured Stripe key.
func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

// CreateIntent creates a provider-side transaction for the booking amount.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency, bookingID string, metadata map[string]string) (string, string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctxWithTimeout
	params.AddMetadata("booking_id", bookingID)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", booking.NewExternalServiceError(fmt.Sprintf("payment provider error: %v", err))
	}
	return pi.ID, pi.ClientSecret, nil
}

// GetIntentStatus fetches the current provider-side status of an intent.
func (g *StripeGateway) GetIntentStatus(ctx context.Context, intentID string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.PaymentIntentParams{}
	params.Context = ctxWithTimeout

	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return "", booking.NewExternalServiceError(fmt.Sprintf("payment provider error: %v", err))
	}
	return string(pi.Status), nil
}

// Refund returns captured funds for an intent. A zero amount refunds in full.
func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount int64, reason string) (string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctxWithTimeout
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	r, err := refund.New(params)
	if err != nil {
		return "", booking.NewExternalServiceError(fmt.Sprintf("payment provider refund error: %v", err))
	}
	return r.ID, nil
}
