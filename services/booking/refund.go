package booking

import (
	"fmt"
	"time"

	"tutorhive/config"
	"tutorhive/models"
)

// CancellationPolicy maps time-before-lesson and actor role to refund rates,
// in percent of the total amount.
type CancellationPolicy struct {
	Hours24Plus   int // cancelled 24h or more before the lesson
	Hours24Minus  int // cancelled within 24h of the lesson
	SameDay       int // cancelled after the scheduled start
	TeacherCancel int // teacher-initiated, regardless of timing
}

// DefaultCancellationPolicy returns the standard marketplace policy.
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		Hours24Plus:   100,
		Hours24Minus:  50,
		SameDay:       0,
		TeacherCancel: 100,
	}
}

// PolicyFromConfig builds the cancellation policy from loaded configuration.
func PolicyFromConfig() CancellationPolicy {
	return CancellationPolicy{
		Hours24Plus:   config.AppConfig.RefundRate24hPlus,
		Hours24Minus:  config.AppConfig.RefundRate24hMinus,
		SameDay:       config.AppConfig.RefundRateSameDay,
		TeacherCancel: config.AppConfig.RefundRateTeacher,
	}
}

// ComputeRefund applies the cancellation policy to a booking. It is a pure
// function: it performs no mutation and no I/O, so the caller decides whether
// to act on the result by invoking the payment refund flow.
func ComputeRefund(b *models.Booking, policy CancellationPolicy, now time.Time, actorIsTeacher bool) models.RefundCalculation {
	total := b.Pricing.TotalAmount

	if b.PaymentStatus != models.PaymentStatusPaid {
		return models.RefundCalculation{
			OriginalAmount:  total,
			RefundAmount:    0,
			RefundRate:      0,
			CancellationFee: 0,
			Reason:          "no payment was captured for this booking",
		}
	}

	var rate int
	var reason string
	if actorIsTeacher {
		rate = policy.TeacherCancel
		reason = "teacher-initiated cancellation"
	} else {
		hoursUntilStart := b.ScheduledAt.Sub(now).Hours()
		switch {
		case hoursUntilStart >= 24:
			rate = policy.Hours24Plus
			reason = "cancelled more than 24 hours before the lesson"
		case hoursUntilStart >= 0:
			rate = policy.Hours24Minus
			reason = "cancelled within 24 hours of the lesson"
		default:
			rate = policy.SameDay
			reason = "cancelled after the scheduled start"
		}
	}

	// Round half up, and never refund more than was paid.
	refund := (total*int64(rate) + 50) / 100
	if refund > total {
		refund = total
	}
	if refund < 0 {
		refund = 0
	}

	return models.RefundCalculation{
		OriginalAmount:  total,
		RefundAmount:    refund,
		RefundRate:      rate,
		CancellationFee: total - refund,
		Reason:          fmt.Sprintf("%s: %d%% refund", reason, rate),
	}
}
