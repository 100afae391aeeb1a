package handlers

import (
	"net/http"

	"tutorhive/models"
	"tutorhive/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler exposes the payment intent and refund endpoints.
type PaymentHandler struct {
	Svc    payment.PaymentService
	Logger *zap.Logger
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc payment.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

// CreateIntent handles POST /api/payments/create-intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req models.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	resp, err := h.Svc.CreateIntent(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type confirmIntentBody struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

// ConfirmIntent handles POST /api/payments/confirm. It is the pull fallback
// for clients that want the payment state before the webhook lands.
func (h *PaymentHandler) ConfirmIntent(c *gin.Context) {
	var body confirmIntentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	resp, err := h.Svc.ConfirmIntent(c.Request.Context(), body.PaymentIntentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refund handles POST /api/payments/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	var req models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	resp, err := h.Svc.Refund(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmOffline handles POST /api/payments/:id/confirm-offline for transfer
// and cash bookings.
func (h *PaymentHandler) ConfirmOffline(c *gin.Context) {
	b, err := h.Svc.ConfirmOffline(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
