package models

import "time"

// Booking status values.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Payment status values.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Payment methods.
const (
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCash     = "cash"
)

// Pricing holds the amounts charged for a booking, in minor currency units.
// It is computed once at creation and never changes afterwards.
type Pricing struct {
	BaseAmount  int64  `bson:"base_amount" json:"baseAmount"`
	TaxAmount   int64  `bson:"tax_amount" json:"taxAmount"`
	PlatformFee int64  `bson:"platform_fee" json:"platformFee"`
	PaymentFee  int64  `bson:"payment_fee" json:"paymentFee"`
	TotalAmount int64  `bson:"total_amount" json:"totalAmount"`
	Currency    string `bson:"currency" json:"currency"`
}

// Booking represents a scheduled lesson reservation made by a student
// against a teacher's offering, together with its payment state.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	OfferingID string `bson:"offering_id" json:"offeringId"`
	TeacherID  string `bson:"teacher_id" json:"teacherId"`
	StudentID  string `bson:"student_id" json:"studentId"`

	ScheduledAt     time.Time `bson:"scheduled_at" json:"scheduledAt"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`
	Participants    int       `bson:"participants" json:"participants"`

	Pricing Pricing `bson:"pricing" json:"pricing"`

	PaymentMethod   string `bson:"payment_method" json:"paymentMethod"`
	PaymentStatus   string `bson:"payment_status" json:"paymentStatus"`
	PaymentIntentID string `bson:"payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`

	Status string `bson:"status" json:"status"`

	StudentNote  string `bson:"student_note,omitempty" json:"studentNote,omitempty"`
	TeacherNote  string `bson:"teacher_note,omitempty" json:"teacherNote,omitempty"`
	ContactName  string `bson:"contact_name" json:"contactName"`
	ContactEmail string `bson:"contact_email" json:"contactEmail"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contactPhone,omitempty"`
	CancelReason string `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
	ConfirmedAt *time.Time `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`

	// Version is bumped by every mutation and backs the conditional
	// writes that resolve concurrent API/webhook updates.
	Version int64 `bson:"version" json:"version"`
}

// IsTerminal reports whether no further status transition is allowed.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled
}

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a supported payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCash:
		return true
	}
	return false
}
