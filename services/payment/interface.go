package payment

import (
	"context"

	"tutorhive/models"
	"tutorhive/services/booking"
)

// PaymentService orchestrates provider transactions tied 1:1 to bookings.
type PaymentService interface {
	CreateIntent(ctx context.Context, actor booking.Actor, req models.CreateIntentRequest) (*models.CreateIntentResponse, error)
	ConfirmIntent(ctx context.Context, intentID string) (*models.ConfirmIntentResponse, error)
	Refund(ctx context.Context, actor booking.Actor, req models.RefundRequest) (*models.RefundResponse, error)
	// ConfirmOffline confirms a transfer or cash booking without touching the
	// payment provider. It is an administrative / teacher action.
	ConfirmOffline(ctx context.Context, actor booking.Actor, bookingID string) (*models.Booking, error)
}
