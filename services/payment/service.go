package payment

import (
	"context"
	"fmt"

	bookingRepo "tutorhive/database/repository/booking"
	"tutorhive/models"
	"tutorhive/services/booking"

	"go.uber.org/zap"
)

// DefaultPaymentService implements PaymentService. All booking mutations go
// through the state machine; the service itself only sequences provider calls.
type DefaultPaymentService struct {
	Repo    bookingRepo.BookingRepository
	Machine *booking.StateMachine
	Gateway PaymentGateway
	Logger  *zap.Logger
}

// CreateIntent creates a provider transaction for a card booking and attaches
// the returned reference write-once. Every rejection happens before the
// provider is called, so a rejected request never creates a stray transaction.
func (svc *DefaultPaymentService) CreateIntent(ctx context.Context, actor booking.Actor, req models.CreateIntentRequest) (*models.CreateIntentResponse, error) {
	b, err := svc.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if !actor.IsStudentOf(b) {
		return nil, booking.NewAuthorizationError("only the booking's student may initiate payment")
	}
	if b.PaymentMethod != models.PaymentMethodCard {
		return nil, booking.NewValidationError(fmt.Sprintf("%s bookings are settled offline, not through the payment provider", b.PaymentMethod))
	}
	// The authoritative amount lives server-side; a mismatch means the client
	// is stale or tampering.
	if req.Amount != b.Pricing.TotalAmount {
		return nil, booking.NewValidationError(fmt.Sprintf("amount %d does not match the booking total %d", req.Amount, b.Pricing.TotalAmount))
	}
	if b.PaymentStatus == models.PaymentStatusPaid {
		return nil, booking.NewStateConflictError("booking is already paid")
	}
	if b.Status == models.BookingStatusCancelled {
		return nil, booking.NewStateConflictError("cannot pay a cancelled booking")
	}
	if b.PaymentIntentID != "" {
		return nil, booking.NewStateConflictError("payment has already been initiated for this booking")
	}

	intentID, clientSecret, err := svc.Gateway.CreateIntent(ctx, b.Pricing.TotalAmount, b.Pricing.Currency, b.ID, req.Metadata)
	if err != nil {
		return nil, err
	}

	if _, err := svc.Machine.TransitionPayment(ctx, b.ID, models.PaymentStatusPending, intentID); err != nil {
		// The provider transaction exists but could not be attached; surface
		// the conflict so the client re-fetches instead of paying twice.
		svc.Logger.Error("failed to attach payment reference",
			zap.String("bookingID", b.ID), zap.String("intentID", intentID), zap.Error(err))
		return nil, err
	}

	svc.Logger.Info("payment intent created",
		zap.String("bookingID", b.ID), zap.String("intentID", intentID))
	return &models.CreateIntentResponse{
		PaymentIntentID: intentID,
		ClientSecret:    clientSecret,
	}, nil
}

// ConfirmIntent is the pull fallback for payment-state propagation: it asks
// the provider for the current intent status and applies the corresponding
// transition. A payment still in flight is a no-op, not an error.
func (svc *DefaultPaymentService) ConfirmIntent(ctx context.Context, intentID string) (*models.ConfirmIntentResponse, error) {
	b, err := svc.Repo.GetByPaymentIntentID(ctx, intentID)
	if err == bookingRepo.ErrNotFound {
		return nil, booking.NewNotFoundError(fmt.Sprintf("no booking found for payment intent %s", intentID))
	}
	if err != nil {
		return nil, err
	}

	// Already reconciled (by webhook or an earlier call): report current state.
	if b.PaymentStatus == models.PaymentStatusPaid || b.PaymentStatus == models.PaymentStatusRefunded {
		return confirmResponse(intentID, b), nil
	}

	status, err := svc.Gateway.GetIntentStatus(ctx, intentID)
	if err != nil {
		return nil, err
	}

	switch status {
	case "succeeded":
		b, err = svc.Machine.TransitionPayment(ctx, b.ID, models.PaymentStatusPaid, "")
	case "canceled":
		b, err = svc.Machine.TransitionPayment(ctx, b.ID, models.PaymentStatusFailed, "")
	default:
		// requires_payment_method, requires_confirmation, processing: the
		// payment is still in flight.
		svc.Logger.Debug("payment intent still in flight",
			zap.String("intentID", intentID), zap.String("providerStatus", status))
	}
	if err != nil {
		return nil, err
	}
	return confirmResponse(intentID, b), nil
}

// Refund returns funds to the student for a paid card booking. The caller
// must be a booking party or an administrator.
func (svc *DefaultPaymentService) Refund(ctx context.Context, actor booking.Actor, req models.RefundRequest) (*models.RefundResponse, error) {
	b, err := svc.load(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.GuardAccess(b, actor); err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount == 0 {
		amount = b.Pricing.TotalAmount
	}
	if amount < 0 || amount > b.Pricing.TotalAmount {
		return nil, booking.NewValidationError(fmt.Sprintf("refund amount must be between 1 and %d", b.Pricing.TotalAmount))
	}

	refundID, err := svc.RefundBooking(ctx, req.BookingID, amount, req.Reason)
	if err != nil {
		return nil, err
	}
	return &models.RefundResponse{
		RefundID: refundID,
		Amount:   amount,
		Status:   models.PaymentStatusRefunded,
	}, nil
}

// RefundBooking executes the provider refund and the refunded transition
// (which also cancels the booking when it is not cancelled yet). Access has
// already been checked by the caller; the cancellation flow uses this
// directly with its policy-computed amount.
func (svc *DefaultPaymentService) RefundBooking(ctx context.Context, bookingID string, amount int64, reason string) (string, error) {
	b, err := svc.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if b.PaymentStatus != models.PaymentStatusPaid {
		return "", booking.NewValidationError("only a paid booking can be refunded")
	}
	if b.PaymentIntentID == "" {
		return "", booking.NewValidationError("booking has no payment reference to refund against")
	}

	refundID, err := svc.Gateway.Refund(ctx, b.PaymentIntentID, amount, reason)
	if err != nil {
		return "", err
	}

	if _, err := svc.Machine.TransitionPayment(ctx, bookingID, models.PaymentStatusRefunded, ""); err != nil {
		svc.Logger.Error("provider refund issued but transition failed",
			zap.String("bookingID", bookingID), zap.String("refundID", refundID), zap.Error(err))
		return "", err
	}

	svc.Logger.Info("booking refunded",
		zap.String("bookingID", bookingID),
		zap.String("refundID", refundID),
		zap.Int64("amount", amount))
	return refundID, nil
}

// ConfirmOffline confirms a transfer or cash booking. These methods bypass
// the provider entirely; confirmation is a manual action by the teacher or
// an administrator.
func (svc *DefaultPaymentService) ConfirmOffline(ctx context.Context, actor booking.Actor, bookingID string) (*models.Booking, error) {
	b, err := svc.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentMethod == models.PaymentMethodCard {
		return nil, booking.NewValidationError("card bookings are confirmed by payment capture, not manually")
	}
	return svc.Machine.TransitionStatus(ctx, bookingID, models.BookingStatusConfirmed, actor)
}

func (svc *DefaultPaymentService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := svc.Repo.Get(ctx, bookingID)
	if err == bookingRepo.ErrNotFound {
		return nil, booking.NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func confirmResponse(intentID string, b *models.Booking) *models.ConfirmIntentResponse {
	return &models.ConfirmIntentResponse{
		PaymentIntentID: intentID,
		PaymentStatus:   b.PaymentStatus,
		BookingStatus:   b.Status,
	}
}
