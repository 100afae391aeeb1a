package handlers

import (
	"io"
	"net/http"

	"tutorhive/config"
	"tutorhive/services/payment"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// maxWebhookBodyBytes caps how much of a webhook payload we will read.
const maxWebhookBodyBytes = int64(65536)

// WebhookHandler receives signed provider notifications.
type WebhookHandler struct {
	Reconciler *payment.WebhookReconciler
	Logger     *zap.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(reconciler *payment.WebhookReconciler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Reconciler: reconciler, Logger: logger}
}

// HandlePaymentEvent handles POST /webhooks/payments. The signature is
// verified against the raw body before anything else; an unverified payload
// is never processed. Once an event is durably deduplicated we always answer
// 200, including for event types we ignore, so the provider does not retry.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read request body"})
		return
	}

	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		h.Logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
		return
	}

	intentID := ""
	if id, ok := event.Data.Object["id"].(string); ok {
		intentID = id
	}

	if err := h.Reconciler.Process(c.Request.Context(), event.ID, string(event.Type), intentID); err != nil {
		// A 5xx makes the provider redeliver; the event is not yet in the
		// ledger so the retry will be processed.
		h.Logger.Error("webhook processing failed",
			zap.String("eventID", event.ID), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
