package payment

import (
	"context"

	bookingRepo "tutorhive/database/repository/booking"
	"tutorhive/models"
	"tutorhive/services/booking"

	"go.uber.org/zap"
)

// Provider event types the reconciler acts on or audits.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
	EventChargeDispute   = "charge.dispute.created"
	EventChargeRefunded  = "charge.refunded"
)

// WebhookReconciler consumes verified provider notifications and drives the
// state machine. Signature verification happens in the HTTP handler; the
// reconciler only ever sees authenticated events.
type WebhookReconciler struct {
	Repo    bookingRepo.BookingRepository
	Machine *booking.StateMachine
	Ledger  EventLedger
	Logger  *zap.Logger
}

// NewWebhookReconciler wires a reconciler over the state machine and ledger.
func NewWebhookReconciler(repo bookingRepo.BookingRepository, machine *booking.StateMachine, ledger EventLedger, logger *zap.Logger) *WebhookReconciler {
	return &WebhookReconciler{Repo: repo, Machine: machine, Ledger: ledger, Logger: logger}
}

// Process applies one provider event. A nil return means the delivery may be
// acknowledged; an error means the provider must redeliver (the event is not
// recorded in the ledger until its transition is durable).
func (r *WebhookReconciler) Process(ctx context.Context, eventID, eventType, intentID string) error {
	seen, err := r.Ledger.Seen(ctx, eventID)
	if err != nil {
		return err
	}
	if seen {
		// At-least-once delivery: replay is acknowledged and dropped.
		r.Logger.Debug("duplicate webhook event ignored", zap.String("eventID", eventID))
		return nil
	}

	switch eventType {
	case EventIntentSucceeded:
		if err := r.applyPayment(ctx, eventID, intentID, models.PaymentStatusPaid); err != nil {
			return err
		}
	case EventIntentFailed:
		if err := r.applyPayment(ctx, eventID, intentID, models.PaymentStatusFailed); err != nil {
			return err
		}
	case EventChargeDispute, EventChargeRefunded:
		// Refunds are driven by explicit refund calls; these are audit-only.
		r.Logger.Info("payment provider audit event",
			zap.String("eventID", eventID),
			zap.String("eventType", eventType),
			zap.String("intentID", intentID))
	default:
		r.Logger.Debug("ignoring webhook event type",
			zap.String("eventID", eventID), zap.String("eventType", eventType))
	}

	// Recorded only after the transition succeeded: a crash above causes a
	// safe retry instead of a silently lost event.
	return r.Ledger.Record(ctx, eventID)
}

func (r *WebhookReconciler) applyPayment(ctx context.Context, eventID, intentID, newPaymentStatus string) error {
	b, err := r.Repo.GetByPaymentIntentID(ctx, intentID)
	if err == bookingRepo.ErrNotFound {
		// Redelivery cannot fix an unknown reference; acknowledge and log.
		r.Logger.Warn("webhook event for unknown payment intent",
			zap.String("eventID", eventID), zap.String("intentID", intentID))
		return nil
	}
	if err != nil {
		return err
	}

	if b.PaymentStatus == newPaymentStatus {
		r.Logger.Debug("booking already reconciled",
			zap.String("bookingID", b.ID), zap.String("paymentStatus", newPaymentStatus))
		return nil
	}

	if _, err := r.Machine.TransitionPayment(ctx, b.ID, newPaymentStatus, ""); err != nil {
		// An illegal transition (e.g. a late failure event after capture) is
		// terminal for this event, not a reason to redeliver.
		if code := booking.CodeOf(err); code == booking.CodeStateConflict {
			r.Logger.Warn("webhook transition rejected by state machine",
				zap.String("bookingID", b.ID),
				zap.String("newPaymentStatus", newPaymentStatus),
				zap.Error(err))
			return nil
		}
		return err
	}

	r.Logger.Info("booking reconciled from webhook",
		zap.String("eventID", eventID),
		zap.String("bookingID", b.ID),
		zap.String("paymentStatus", newPaymentStatus))
	return nil
}
