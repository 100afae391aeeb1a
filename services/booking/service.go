package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "tutorhive/database/repository/booking"
	"tutorhive/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Machine  *StateMachine
	Policy   CancellationPolicy
	Refunder PaymentRefunder
	Logger   *zap.Logger
}

// CreateBooking validates the input, computes the immutable pricing total and
// persists a new pending booking on behalf of the student.
func (svc *DefaultBookingService) CreateBooking(ctx context.Context, actor Actor, input CreateBookingInput) (*models.Booking, error) {
	if actor.ID == "" {
		return nil, NewAuthenticationError("missing identity")
	}
	if input.OfferingID == "" || input.TeacherID == "" {
		return nil, NewValidationError("offeringId and teacherId are required")
	}
	if input.Participants < 1 {
		return nil, NewValidationError("participants must be at least 1")
	}
	if input.DurationMinutes <= 0 {
		return nil, NewValidationError("durationMinutes must be positive")
	}
	if input.ScheduledAt.IsZero() {
		return nil, NewValidationError("scheduledAt is required")
	}
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, NewValidationError(fmt.Sprintf("unsupported payment method %q", input.PaymentMethod))
	}
	if input.BaseAmount < 0 || input.TaxAmount < 0 || input.PlatformFee < 0 || input.PaymentFee < 0 {
		return nil, NewValidationError("amounts cannot be negative")
	}
	if input.Currency == "" {
		return nil, NewValidationError("currency is required")
	}
	if input.ContactName == "" || input.ContactEmail == "" {
		return nil, NewValidationError("contact name and email are required")
	}

	now := time.Now()
	b := &models.Booking{
		ID:              uuid.New().String(),
		OfferingID:      input.OfferingID,
		TeacherID:       input.TeacherID,
		StudentID:       actor.ID,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: input.DurationMinutes,
		Participants:    input.Participants,
		Pricing: models.Pricing{
			BaseAmount:  input.BaseAmount,
			TaxAmount:   input.TaxAmount,
			PlatformFee: input.PlatformFee,
			PaymentFee:  input.PaymentFee,
			TotalAmount: input.BaseAmount + input.TaxAmount + input.PlatformFee + input.PaymentFee,
			Currency:    input.Currency,
		},
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.BookingStatusPending,
		StudentNote:   input.StudentNote,
		ContactName:   input.ContactName,
		ContactEmail:  input.ContactEmail,
		ContactPhone:  input.ContactPhone,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}

	if err := svc.Repo.Create(ctx, b); err != nil {
		return nil, err
	}

	svc.Logger.Info("booking created",
		zap.String("bookingID", b.ID),
		zap.String("studentID", b.StudentID),
		zap.String("teacherID", b.TeacherID),
		zap.Int64("totalAmount", b.Pricing.TotalAmount))
	return b, nil
}

// GetBooking returns the booking if the actor is one of its parties or an admin.
func (svc *DefaultBookingService) GetBooking(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error) {
	b, err := svc.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := GuardAccess(b, actor); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBooking applies an optional status transition and optional notes.
// Status changes go through the state machine; notes are written by the
// owning party only.
func (svc *DefaultBookingService) UpdateBooking(ctx context.Context, actor Actor, bookingID string, input UpdateBookingInput) (*models.Booking, error) {
	b, err := svc.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := GuardAccess(b, actor); err != nil {
		return nil, err
	}

	if input.Status != "" && input.Status != b.Status {
		b, err = svc.Machine.TransitionStatus(ctx, bookingID, input.Status, actor)
		if err != nil {
			return nil, err
		}
	}

	if input.StudentNote != "" || input.TeacherNote != "" {
		if input.StudentNote != "" && !actor.IsStudentOf(b) && !actor.Admin {
			return nil, NewAuthorizationError("only the student may edit the student note")
		}
		if input.TeacherNote != "" && !actor.IsTeacherOf(b) && !actor.Admin {
			return nil, NewAuthorizationError("only the teacher may edit the teacher note")
		}
		b, err = svc.Repo.ConditionalUpdate(ctx, bookingID, b.Version, func(doc *models.Booking) error {
			if input.StudentNote != "" {
				doc.StudentNote = input.StudentNote
			}
			if input.TeacherNote != "" {
				doc.TeacherNote = input.TeacherNote
			}
			return nil
		})
		if err == bookingRepo.ErrVersionConflict {
			return nil, NewStateConflictError("booking was modified concurrently, please retry")
		}
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

// CancelBooking cancels the booking and, when money was captured through the
// payment provider, drives the refund flow for the policy-computed amount.
// The refund calculation is returned to the caller either way.
func (svc *DefaultBookingService) CancelBooking(ctx context.Context, actor Actor, bookingID, reason string) (*models.Booking, *models.RefundCalculation, error) {
	b, err := svc.load(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := GuardAccess(b, actor); err != nil {
		return nil, nil, err
	}

	calc := ComputeRefund(b, svc.Policy, time.Now(), actor.IsTeacherOf(b))

	b, err = svc.Machine.Cancel(ctx, bookingID, actor, reason)
	if err != nil {
		return nil, nil, err
	}

	if calc.RefundAmount > 0 && b.PaymentMethod == models.PaymentMethodCard && b.PaymentIntentID != "" {
		refundReason := reason
		if refundReason == "" {
			refundReason = calc.Reason
		}
		if _, err := svc.Refunder.RefundBooking(ctx, bookingID, calc.RefundAmount, refundReason); err != nil {
			// The booking is cancelled; the refund can be retried explicitly.
			svc.Logger.Error("refund failed after cancellation",
				zap.String("bookingID", bookingID), zap.Error(err))
			return nil, nil, err
		}
		b, err = svc.load(ctx, bookingID)
		if err != nil {
			return nil, nil, err
		}
	}

	svc.Logger.Info("booking cancelled",
		zap.String("bookingID", bookingID),
		zap.String("actorID", actor.ID),
		zap.Int64("refundAmount", calc.RefundAmount),
		zap.Int("refundRate", calc.RefundRate))
	return b, &calc, nil
}

// ListBookings lists bookings for a party. The role is required: "student"
// lists bookings the user requested, "teacher" lists bookings held against
// them. Listing another user requires administrator capability.
func (svc *DefaultBookingService) ListBookings(ctx context.Context, actor Actor, userID, role string) ([]models.Booking, error) {
	if userID == "" {
		userID = actor.ID
	}
	if userID != actor.ID && !actor.Admin {
		return nil, NewAuthorizationError("you may only list your own bookings")
	}

	switch role {
	case RoleStudent:
		return svc.Repo.ListByStudent(ctx, userID)
	case RoleTeacher:
		return svc.Repo.ListByTeacher(ctx, userID)
	case "":
		return nil, NewValidationError("role is required: student or teacher")
	default:
		return nil, NewValidationError(fmt.Sprintf("unknown role %q: expected student or teacher", role))
	}
}

func (svc *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := svc.Repo.Get(ctx, bookingID)
	if err == bookingRepo.ErrNotFound {
		return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
