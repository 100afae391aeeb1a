package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "tutorhive/database/repository/booking"
	"tutorhive/models"

	"go.uber.org/zap"
)

// maxTransitionRetries bounds the re-read/re-evaluate loop when a conditional
// write loses against a concurrent mutation of the same booking.
const maxTransitionRetries = 3

// StateMachine owns every status and payment-status legality check. No other
// component writes those fields, so no caller can produce an
// invariant-violating combination.
type StateMachine struct {
	Repo   bookingRepo.BookingRepository
	Logger *zap.Logger
}

// NewStateMachine returns a state machine over the given repository.
func NewStateMachine(repo bookingRepo.BookingRepository, logger *zap.Logger) *StateMachine {
	return &StateMachine{Repo: repo, Logger: logger}
}

// TransitionStatus moves a booking to newStatus on behalf of actor. It fails
// with an AuthorizationError if the actor lacks the capability for the
// transition and with a StateConflictError if the target is not reachable
// from the current state.
func (sm *StateMachine) TransitionStatus(ctx context.Context, bookingID, newStatus string, actor Actor) (*models.Booking, error) {
	return sm.transitionStatus(ctx, bookingID, newStatus, actor, "")
}

// Cancel moves a booking to cancelled, recording the caller-supplied reason.
func (sm *StateMachine) Cancel(ctx context.Context, bookingID string, actor Actor, reason string) (*models.Booking, error) {
	return sm.transitionStatus(ctx, bookingID, models.BookingStatusCancelled, actor, reason)
}

func (sm *StateMachine) transitionStatus(ctx context.Context, bookingID, newStatus string, actor Actor, cancelReason string) (*models.Booking, error) {
	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		b, err := sm.Repo.Get(ctx, bookingID)
		if err == bookingRepo.ErrNotFound {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
		}
		if err != nil {
			return nil, err
		}

		if err := checkStatusTransition(b, newStatus, actor); err != nil {
			return nil, err
		}

		updated, err := sm.Repo.ConditionalUpdate(ctx, bookingID, b.Version, func(doc *models.Booking) error {
			applyStatus(doc, newStatus, cancelReason)
			return nil
		})
		if err == bookingRepo.ErrVersionConflict {
			// A concurrent writer won; re-read and re-evaluate against the
			// fresh state rather than blindly re-applying.
			sm.Logger.Debug("status transition retry after version conflict",
				zap.String("bookingID", bookingID), zap.String("newStatus", newStatus))
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, NewStateConflictError(fmt.Sprintf("booking %s is being modified concurrently, please retry", bookingID))
}

// TransitionPayment moves a booking's payment status, optionally attaching a
// write-once external payment reference. When the payment becomes paid while
// the booking is still pending, the status advances to confirmed in the same
// conditional write so no half-updated state is observable.
func (sm *StateMachine) TransitionPayment(ctx context.Context, bookingID, newPaymentStatus, externalRef string) (*models.Booking, error) {
	for attempt := 0; attempt < maxTransitionRetries; attempt++ {
		b, err := sm.Repo.Get(ctx, bookingID)
		if err == bookingRepo.ErrNotFound {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
		}
		if err != nil {
			return nil, err
		}

		if err := checkPaymentTransition(b, newPaymentStatus, externalRef); err != nil {
			return nil, err
		}

		updated, err := sm.Repo.ConditionalUpdate(ctx, bookingID, b.Version, func(doc *models.Booking) error {
			applyPayment(doc, newPaymentStatus, externalRef)
			return nil
		})
		if err == bookingRepo.ErrVersionConflict {
			sm.Logger.Debug("payment transition retry after version conflict",
				zap.String("bookingID", bookingID), zap.String("newPaymentStatus", newPaymentStatus))
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, NewStateConflictError(fmt.Sprintf("booking %s is being modified concurrently, please retry", bookingID))
}

func checkStatusTransition(b *models.Booking, newStatus string, actor Actor) error {
	if !models.ValidStatus(newStatus) {
		return NewValidationError(fmt.Sprintf("unknown booking status %q", newStatus))
	}
	if b.Status == newStatus {
		return NewStateConflictError(fmt.Sprintf("booking is already %s", b.Status))
	}
	if b.IsTerminal() {
		return NewStateConflictError("booking is cancelled and cannot change status")
	}

	switch newStatus {
	case models.BookingStatusPending:
		return NewStateConflictError(fmt.Sprintf("cannot move a %s booking back to pending", b.Status))

	case models.BookingStatusConfirmed:
		if b.Status != models.BookingStatusPending {
			return NewStateConflictError(fmt.Sprintf("cannot confirm a %s booking", b.Status))
		}
		if !actor.Admin && !actor.IsTeacherOf(b) {
			return NewAuthorizationError("only the teacher or an administrator may confirm a booking")
		}
		// Card bookings are confirmed by payment capture, never ahead of it.
		if b.PaymentMethod == models.PaymentMethodCard && b.PaymentStatus != models.PaymentStatusPaid {
			return NewStateConflictError("card bookings cannot be confirmed before payment is captured")
		}

	case models.BookingStatusCompleted:
		if b.Status != models.BookingStatusConfirmed {
			return NewStateConflictError(fmt.Sprintf("cannot complete a %s booking", b.Status))
		}
		if !actor.Admin && !actor.IsTeacherOf(b) {
			return NewAuthorizationError("only the teacher or an administrator may complete a booking")
		}

	case models.BookingStatusCancelled:
		if b.Status == models.BookingStatusCompleted {
			return NewStateConflictError("cannot cancel a completed booking")
		}
		if !actor.Admin && !actor.IsTeacherOf(b) && !actor.IsStudentOf(b) {
			return NewAuthorizationError("only a booking party or an administrator may cancel")
		}
	}
	return nil
}

func applyStatus(doc *models.Booking, newStatus, cancelReason string) {
	now := time.Now()
	doc.Status = newStatus
	switch newStatus {
	case models.BookingStatusConfirmed:
		doc.ConfirmedAt = &now
	case models.BookingStatusCompleted:
		doc.CompletedAt = &now
	case models.BookingStatusCancelled:
		doc.CancelledAt = &now
		if cancelReason != "" {
			doc.CancelReason = cancelReason
		}
	}
}

func checkPaymentTransition(b *models.Booking, newPaymentStatus, externalRef string) error {
	// The external reference is write-once: it is never reassigned.
	if externalRef != "" && b.PaymentIntentID != "" && b.PaymentIntentID != externalRef {
		return NewStateConflictError("a payment reference is already attached to this booking")
	}

	switch newPaymentStatus {
	case models.PaymentStatusPending:
		// Attaching the provider reference at intent creation.
		if externalRef == "" {
			return NewValidationError("a payment reference is required to initiate payment")
		}
		if b.PaymentIntentID != "" {
			return NewStateConflictError("payment has already been initiated for this booking")
		}
		if b.PaymentStatus == models.PaymentStatusPaid || b.PaymentStatus == models.PaymentStatusRefunded {
			return NewStateConflictError(fmt.Sprintf("cannot initiate payment on a %s booking", b.PaymentStatus))
		}
		if b.Status == models.BookingStatusCancelled {
			return NewStateConflictError("cannot initiate payment on a cancelled booking")
		}

	case models.PaymentStatusPaid:
		if b.PaymentStatus == models.PaymentStatusPaid {
			return NewStateConflictError("booking is already paid")
		}
		if b.PaymentStatus == models.PaymentStatusRefunded {
			return NewStateConflictError("cannot pay a refunded booking")
		}
		if b.Status == models.BookingStatusCancelled {
			return NewStateConflictError("cannot capture payment on a cancelled booking")
		}

	case models.PaymentStatusFailed:
		if b.PaymentStatus == models.PaymentStatusPaid || b.PaymentStatus == models.PaymentStatusRefunded {
			return NewStateConflictError(fmt.Sprintf("cannot mark a %s booking as failed", b.PaymentStatus))
		}
		if b.Status == models.BookingStatusCancelled {
			return NewStateConflictError("cannot record a payment failure on a cancelled booking")
		}

	case models.PaymentStatusRefunded:
		if b.PaymentStatus != models.PaymentStatusPaid {
			return NewStateConflictError("only a paid booking can be refunded")
		}

	default:
		return NewValidationError(fmt.Sprintf("unknown payment status %q", newPaymentStatus))
	}
	return nil
}

func applyPayment(doc *models.Booking, newPaymentStatus, externalRef string) {
	now := time.Now()
	doc.PaymentStatus = newPaymentStatus
	if externalRef != "" && doc.PaymentIntentID == "" {
		doc.PaymentIntentID = externalRef
	}
	// Capture while pending advances the booking in the same write.
	if newPaymentStatus == models.PaymentStatusPaid && doc.Status == models.BookingStatusPending {
		doc.Status = models.BookingStatusConfirmed
		doc.ConfirmedAt = &now
	}
	// A refund implies the booking is cancelled.
	if newPaymentStatus == models.PaymentStatusRefunded && doc.Status != models.BookingStatusCancelled {
		doc.Status = models.BookingStatusCancelled
		doc.CancelledAt = &now
	}
}
