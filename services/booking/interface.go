package booking

import (
	"context"
	"time"

	"tutorhive/models"
)

// CreateBookingInput carries everything needed to create a booking. The
// pricing components come from the offering the client selected; the total is
// computed here, once, and never recomputed afterwards.
type CreateBookingInput struct {
	OfferingID      string
	TeacherID       string
	ScheduledAt     time.Time
	DurationMinutes int
	Participants    int
	PaymentMethod   string

	BaseAmount  int64
	TaxAmount   int64
	PlatformFee int64
	PaymentFee  int64
	Currency    string

	ContactName  string
	ContactEmail string
	ContactPhone string
	StudentNote  string
}

// UpdateBookingInput carries an optional status change and optional notes.
type UpdateBookingInput struct {
	Status      string
	StudentNote string
	TeacherNote string
}

// PaymentRefunder executes a provider-side refund and the associated payment
// transition for a booking. Implemented by the payment service; declared here
// so the cancellation flow can drive refunds without an import cycle.
type PaymentRefunder interface {
	RefundBooking(ctx context.Context, bookingID string, amount int64, reason string) (string, error)
}

// BookingService defines the booking lifecycle operations.
type BookingService interface {
	CreateBooking(ctx context.Context, actor Actor, input CreateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, actor Actor, bookingID string, input UpdateBookingInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, actor Actor, bookingID, reason string) (*models.Booking, *models.RefundCalculation, error)
	ListBookings(ctx context.Context, actor Actor, userID, role string) ([]models.Booking, error)
}
