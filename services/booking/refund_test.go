package booking

import (
	"testing"
	"time"

	"tutorhive/models"
)

func paidBooking(total int64, scheduledAt time.Time) *models.Booking {
	return &models.Booking{
		ID:          "bk-1",
		TeacherID:   "teacher-1",
		StudentID:   "student-1",
		ScheduledAt: scheduledAt,
		Pricing: models.Pricing{
			BaseAmount:  total,
			TotalAmount: total,
			Currency:    "usd",
		},
		PaymentMethod: models.PaymentMethodCard,
		PaymentStatus: models.PaymentStatusPaid,
		Status:        models.BookingStatusConfirmed,
	}
}

func TestComputeRefund(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultCancellationPolicy()

	tests := []struct {
		name           string
		booking        *models.Booking
		actorIsTeacher bool
		wantAmount     int64
		wantRate       int
		wantFee        int64
	}{
		{
			name:       "student cancels 48h ahead gets full refund",
			booking:    paidBooking(3000, now.Add(48*time.Hour)),
			wantAmount: 3000,
			wantRate:   100,
			wantFee:    0,
		},
		{
			name:       "student cancels 10h ahead gets half refund",
			booking:    paidBooking(3000, now.Add(10*time.Hour)),
			wantAmount: 1500,
			wantRate:   50,
			wantFee:    1500,
		},
		{
			name:           "teacher cancels same day still refunds in full",
			booking:        paidBooking(3000, now.Add(-1*time.Hour)),
			actorIsTeacher: true,
			wantAmount:     3000,
			wantRate:       100,
			wantFee:        0,
		},
		{
			name:       "student cancels after start gets nothing",
			booking:    paidBooking(3000, now.Add(-1*time.Hour)),
			wantAmount: 0,
			wantRate:   0,
			wantFee:    3000,
		},
		{
			name:       "exactly 24h ahead counts as the generous bucket",
			booking:    paidBooking(2000, now.Add(24*time.Hour)),
			wantAmount: 2000,
			wantRate:   100,
			wantFee:    0,
		},
		{
			name:       "odd total rounds half up",
			booking:    paidBooking(1001, now.Add(10*time.Hour)),
			wantAmount: 501,
			wantRate:   50,
			wantFee:    500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRefund(tt.booking, policy, now, tt.actorIsTeacher)
			if got.RefundAmount != tt.wantAmount {
				t.Errorf("RefundAmount = %d, want %d", got.RefundAmount, tt.wantAmount)
			}
			if got.RefundRate != tt.wantRate {
				t.Errorf("RefundRate = %d, want %d", got.RefundRate, tt.wantRate)
			}
			if got.CancellationFee != tt.wantFee {
				t.Errorf("CancellationFee = %d, want %d", got.CancellationFee, tt.wantFee)
			}
			if got.OriginalAmount != tt.booking.Pricing.TotalAmount {
				t.Errorf("OriginalAmount = %d, want %d", got.OriginalAmount, tt.booking.Pricing.TotalAmount)
			}
			if got.RefundAmount < 0 || got.RefundAmount > tt.booking.Pricing.TotalAmount {
				t.Errorf("RefundAmount %d outside [0, %d]", got.RefundAmount, tt.booking.Pricing.TotalAmount)
			}
		})
	}
}

func TestComputeRefundUnpaidBookingRefundsNothing(t *testing.T) {
	now := time.Now()
	b := paidBooking(3000, now.Add(48*time.Hour))
	b.PaymentStatus = models.PaymentStatusPending

	got := ComputeRefund(b, DefaultCancellationPolicy(), now, false)
	if got.RefundAmount != 0 {
		t.Errorf("RefundAmount = %d, want 0 when nothing was captured", got.RefundAmount)
	}
	if got.CancellationFee != 0 {
		t.Errorf("CancellationFee = %d, want 0 when nothing was captured", got.CancellationFee)
	}
}

func TestComputeRefundTeacherCancelUnpaid(t *testing.T) {
	now := time.Now()
	b := paidBooking(3000, now.Add(2*time.Hour))
	b.PaymentStatus = models.PaymentStatusFailed

	got := ComputeRefund(b, DefaultCancellationPolicy(), now, true)
	if got.RefundAmount != 0 {
		t.Errorf("RefundAmount = %d, want 0: teacher override only applies to captured payments", got.RefundAmount)
	}
}
