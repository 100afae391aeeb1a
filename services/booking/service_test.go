package booking

import (
	"context"
	"testing"
	"time"

	bookingRepo "tutorhive/database/repository/booking"
	"tutorhive/models"

	"go.uber.org/zap"
)

// fakeRefunder applies the refunded transition the way the payment service
// would, and records what it was asked to refund.
type fakeRefunder struct {
	machine *StateMachine
	calls   int
	amount  int64
}

func (f *fakeRefunder) RefundBooking(ctx context.Context, bookingID string, amount int64, reason string) (string, error) {
	f.calls++
	f.amount = amount
	if _, err := f.machine.TransitionPayment(ctx, bookingID, models.PaymentStatusRefunded, ""); err != nil {
		return "", err
	}
	return "re_test", nil
}

func newService(t *testing.T) (*DefaultBookingService, *fakeRefunder, bookingRepo.BookingRepository) {
	t.Helper()
	repo := bookingRepo.NewMemoryBookingRepo()
	machine := NewStateMachine(repo, zap.NewNop())
	refunder := &fakeRefunder{machine: machine}
	svc := &DefaultBookingService{
		Repo:     repo,
		Machine:  machine,
		Policy:   DefaultCancellationPolicy(),
		Refunder: refunder,
		Logger:   zap.NewNop(),
	}
	return svc, refunder, repo
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		OfferingID:      "off-1",
		TeacherID:       "teacher-1",
		ScheduledAt:     time.Now().Add(48 * time.Hour),
		DurationMinutes: 60,
		Participants:    2,
		PaymentMethod:   models.PaymentMethodCard,
		BaseAmount:      2500,
		TaxAmount:       200,
		PlatformFee:     200,
		PaymentFee:      100,
		Currency:        "usd",
		ContactName:     "Student One",
		ContactEmail:    "student@example.com",
	}
}

func TestCreateBookingComputesPricingOnce(t *testing.T) {
	svc, _, _ := newService(t)

	b, err := svc.CreateBooking(context.Background(), student, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p := b.Pricing
	if p.TotalAmount != p.BaseAmount+p.TaxAmount+p.PlatformFee+p.PaymentFee {
		t.Errorf("TotalAmount = %d, want sum of components %d",
			p.TotalAmount, p.BaseAmount+p.TaxAmount+p.PlatformFee+p.PaymentFee)
	}
	if p.TotalAmount != 3000 {
		t.Errorf("TotalAmount = %d, want 3000", p.TotalAmount)
	}
	if b.Status != models.BookingStatusPending || b.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("new booking state = %s/%s, want pending/pending", b.Status, b.PaymentStatus)
	}
	if b.StudentID != student.ID {
		t.Errorf("StudentID = %q, want the acting student", b.StudentID)
	}
	if b.Version != 1 {
		t.Errorf("Version = %d, want 1", b.Version)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"zero participants", func(in *CreateBookingInput) { in.Participants = 0 }},
		{"missing offering", func(in *CreateBookingInput) { in.OfferingID = "" }},
		{"bad payment method", func(in *CreateBookingInput) { in.PaymentMethod = "barter" }},
		{"negative amount", func(in *CreateBookingInput) { in.BaseAmount = -1 }},
		{"missing currency", func(in *CreateBookingInput) { in.Currency = "" }},
		{"missing contact", func(in *CreateBookingInput) { in.ContactEmail = "" }},
		{"zero duration", func(in *CreateBookingInput) { in.DurationMinutes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.CreateBooking(ctx, student, in)
			if CodeOf(err) != CodeValidation {
				t.Errorf("error code = %q (%v), want %q", CodeOf(err), err, CodeValidation)
			}
		})
	}
}

func TestPricingImmutableThroughLifecycle(t *testing.T) {
	svc, _, repo := newService(t)
	ctx := context.Background()

	in := validInput()
	in.PaymentMethod = models.PaymentMethodCash
	b, err := svc.CreateBooking(ctx, student, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	original := b.Pricing

	if _, err := svc.Machine.TransitionStatus(ctx, b.ID, models.BookingStatusConfirmed, teacher); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Machine.TransitionStatus(ctx, b.ID, models.BookingStatusCompleted, teacher); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, _ := repo.Get(ctx, b.ID)
	if got.Pricing != original {
		t.Errorf("Pricing changed across transitions: %+v != %+v", got.Pricing, original)
	}
}

func TestGetBookingAccessGuard(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, student, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name     string
		actor    Actor
		wantCode string
	}{
		{"student reads own booking", student, ""},
		{"teacher reads their booking", teacher, ""},
		{"admin reads any booking", admin, ""},
		{"stranger is rejected", Actor{ID: "stranger"}, CodeAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetBooking(ctx, tt.actor, b.ID)
			if CodeOf(err) != tt.wantCode {
				t.Errorf("error code = %q (%v), want %q", CodeOf(err), err, tt.wantCode)
			}
		})
	}

	if _, err := svc.GetBooking(ctx, student, "missing"); CodeOf(err) != CodeNotFound {
		t.Errorf("missing booking: code = %q, want %q", CodeOf(err), CodeNotFound)
	}
}

func TestCancelPaidCardBookingDrivesRefund(t *testing.T) {
	svc, refunder, repo := newService(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, student, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Machine.TransitionPayment(ctx, b.ID, models.PaymentStatusPending, "pi_123"); err != nil {
		t.Fatalf("attach intent: %v", err)
	}
	if _, err := svc.Machine.TransitionPayment(ctx, b.ID, models.PaymentStatusPaid, ""); err != nil {
		t.Fatalf("pay: %v", err)
	}

	cancelled, calc, err := svc.CancelBooking(ctx, student, b.ID, "schedule conflict")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if calc.RefundAmount != 3000 || calc.RefundRate != 100 {
		t.Errorf("refund calc = %d @ %d%%, want 3000 @ 100%%", calc.RefundAmount, calc.RefundRate)
	}
	if refunder.calls != 1 {
		t.Fatalf("refunder calls = %d, want 1", refunder.calls)
	}
	if refunder.amount != 3000 {
		t.Errorf("refunded amount = %d, want 3000", refunder.amount)
	}
	if cancelled.Status != models.BookingStatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.PaymentStatus != models.PaymentStatusRefunded {
		t.Errorf("PaymentStatus = %s, want refunded", cancelled.PaymentStatus)
	}

	got, _ := repo.Get(ctx, b.ID)
	if got.CancelReason != "schedule conflict" {
		t.Errorf("CancelReason = %q, want recorded reason", got.CancelReason)
	}
}

func TestCancelUnpaidBookingSkipsRefunder(t *testing.T) {
	svc, refunder, _ := newService(t)
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, student, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, calc, err := svc.CancelBooking(ctx, student, b.ID, "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if calc.RefundAmount != 0 {
		t.Errorf("RefundAmount = %d, want 0 for unpaid booking", calc.RefundAmount)
	}
	if refunder.calls != 0 {
		t.Errorf("refunder calls = %d, want 0", refunder.calls)
	}
	if cancelled.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("PaymentStatus = %s, want untouched pending", cancelled.PaymentStatus)
	}
}

func TestListBookingsRequiresRole(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.ListBookings(ctx, student, "", ""); CodeOf(err) != CodeValidation {
		t.Errorf("missing role: code = %q, want %q", CodeOf(err), CodeValidation)
	}
	if _, err := svc.ListBookings(ctx, student, "", "organizer"); CodeOf(err) != CodeValidation {
		t.Errorf("unknown role: code = %q, want %q", CodeOf(err), CodeValidation)
	}
	if _, err := svc.ListBookings(ctx, student, "someone-else", RoleStudent); CodeOf(err) != CodeAuthorization {
		t.Errorf("listing another user: code = %q, want %q", CodeOf(err), CodeAuthorization)
	}
}

func TestListBookingsByParty(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, student, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := validInput()
	other.TeacherID = "teacher-2"
	if _, err := svc.CreateBooking(ctx, student, other); err != nil {
		t.Fatalf("create second: %v", err)
	}

	asStudent, err := svc.ListBookings(ctx, student, "", RoleStudent)
	if err != nil {
		t.Fatalf("list as student: %v", err)
	}
	if len(asStudent) != 2 {
		t.Errorf("student list = %d bookings, want 2", len(asStudent))
	}

	asTeacher, err := svc.ListBookings(ctx, teacher, "", RoleTeacher)
	if err != nil {
		t.Fatalf("list as teacher: %v", err)
	}
	if len(asTeacher) != 1 {
		t.Errorf("teacher list = %d bookings, want 1", len(asTeacher))
	}

	byAdmin, err := svc.ListBookings(ctx, admin, "teacher-2", RoleTeacher)
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(byAdmin) != 1 {
		t.Errorf("admin list = %d bookings, want 1", len(byAdmin))
	}
}
