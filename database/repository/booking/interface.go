package bookingRepo

import (
	"context"
	"errors"

	"tutorhive/models"
)

// ErrNotFound is returned when no booking exists for the given ID.
var ErrNotFound = errors.New("booking not found")

// ErrVersionConflict is returned when a conditional write loses the race
// against a concurrent mutation of the same booking.
var ErrVersionConflict = errors.New("booking version conflict")

// BookingRepository defines typed access to the booking store. All mutations
// after creation go through ConditionalUpdate so concurrent writers are
// detected instead of overwriting each other.
type BookingRepository interface {
	Get(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	// ConditionalUpdate loads the booking, verifies it still carries the
	// expected version, applies mutate, and persists the result with the
	// version bumped. Returns ErrVersionConflict if the booking changed
	// underneath the caller.
	ConditionalUpdate(ctx context.Context, id string, version int64, mutate func(*models.Booking) error) (*models.Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Booking, error)
}
