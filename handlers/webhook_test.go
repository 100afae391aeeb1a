package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tutorhive/config"
	bookingRepo "tutorhive/database/repository/booking"
	"tutorhive/models"
	"tutorhive/services/booking"
	"tutorhive/services/payment"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

type recordingLedger struct {
	seen map[string]bool
}

func (l *recordingLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	return l.seen[eventID], nil
}

func (l *recordingLedger) Record(ctx context.Context, eventID string) error {
	l.seen[eventID] = true
	return nil
}

func newWebhookRouter(t *testing.T) (*gin.Engine, bookingRepo.BookingRepository, *recordingLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig.StripeWebhookSecret = testWebhookSecret

	repo := bookingRepo.NewMemoryBookingRepo()
	machine := booking.NewStateMachine(repo, zap.NewNop())
	ledger := &recordingLedger{seen: map[string]bool{}}
	reconciler := payment.NewWebhookReconciler(repo, machine, ledger, zap.NewNop())

	r := gin.New()
	r.POST("/webhooks/payments", NewWebhookHandler(reconciler, zap.NewNop()).HandlePaymentEvent)
	return r, repo, ledger
}

// signPayload produces a Stripe-Signature header value for the payload, the
// same t=..,v1=.. scheme the provider uses.
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventID, eventType, intentID string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"object":"event","api_version":%q,"type":%q,"data":{"object":{"id":%q,"object":"payment_intent"}}}`,
		eventID, stripe.APIVersion, eventType, intentID))
}

func postEvent(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlePaymentEventAppliesSignedEvent(t *testing.T) {
	r, repo, ledger := newWebhookRouter(t)
	ctx := context.Background()

	now := time.Now()
	b := &models.Booking{
		ID:              "bk-1",
		OfferingID:      "off-1",
		TeacherID:       "teacher-1",
		StudentID:       "student-1",
		ScheduledAt:     now.Add(48 * time.Hour),
		DurationMinutes: 60,
		Participants:    1,
		Pricing:         models.Pricing{BaseAmount: 3000, TotalAmount: 3000, Currency: "usd"},
		PaymentMethod:   models.PaymentMethodCard,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentIntentID: "pi_1",
		Status:          models.BookingStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	payload := eventPayload("evt_1", "payment_intent.succeeded", "pi_1")
	w := postEvent(r, payload, signPayload(payload, testWebhookSecret, time.Now()))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	got, _ := repo.Get(ctx, b.ID)
	if got.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("PaymentStatus = %s, want paid", got.PaymentStatus)
	}
	if got.Status != models.BookingStatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}
	if !ledger.seen["evt_1"] {
		t.Error("event not recorded in ledger")
	}
}

func TestHandlePaymentEventRejectsBadSignature(t *testing.T) {
	r, _, ledger := newWebhookRouter(t)

	payload := eventPayload("evt_1", "payment_intent.succeeded", "pi_1")
	w := postEvent(r, payload, signPayload(payload, "whsec_wrong_secret", time.Now()))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if ledger.seen["evt_1"] {
		t.Error("unverified event must never reach the ledger")
	}
}

func TestHandlePaymentEventRejectsTamperedPayload(t *testing.T) {
	r, _, _ := newWebhookRouter(t)

	payload := eventPayload("evt_1", "payment_intent.succeeded", "pi_1")
	signature := signPayload(payload, testWebhookSecret, time.Now())
	tampered := eventPayload("evt_1", "payment_intent.succeeded", "pi_other")

	if w := postEvent(r, tampered, signature); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandlePaymentEventRejectsStaleTimestamp(t *testing.T) {
	r, _, _ := newWebhookRouter(t)

	payload := eventPayload("evt_1", "payment_intent.succeeded", "pi_1")
	stale := signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour))

	if w := postEvent(r, payload, stale); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
