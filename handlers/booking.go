package handlers

import (
	"net/http"
	"time"

	"tutorhive/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle endpoints.
type BookingHandler struct {
	Svc    booking.BookingService
	Logger *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Logger: logger}
}

type createBookingBody struct {
	OfferingID      string    `json:"offeringId" binding:"required"`
	TeacherID       string    `json:"teacherId" binding:"required"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required"`
	Participants    int       `json:"participants" binding:"required"`
	PaymentMethod   string    `json:"paymentMethod" binding:"required"`
	BaseAmount      int64     `json:"baseAmount"`
	TaxAmount       int64     `json:"taxAmount"`
	PlatformFee     int64     `json:"platformFee"`
	PaymentFee      int64     `json:"paymentFee"`
	Currency        string    `json:"currency" binding:"required"`
	ContactName     string    `json:"contactName" binding:"required"`
	ContactEmail    string    `json:"contactEmail" binding:"required"`
	ContactPhone    string    `json:"contactPhone"`
	StudentNote     string    `json:"studentNote"`
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var body createBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	b, err := h.Svc.CreateBooking(c.Request.Context(), actorFromContext(c), booking.CreateBookingInput{
		OfferingID:      body.OfferingID,
		TeacherID:       body.TeacherID,
		ScheduledAt:     body.ScheduledAt,
		DurationMinutes: body.DurationMinutes,
		Participants:    body.Participants,
		PaymentMethod:   body.PaymentMethod,
		BaseAmount:      body.BaseAmount,
		TaxAmount:       body.TaxAmount,
		PlatformFee:     body.PlatformFee,
		PaymentFee:      body.PaymentFee,
		Currency:        body.Currency,
		ContactName:     body.ContactName,
		ContactEmail:    body.ContactEmail,
		ContactPhone:    body.ContactPhone,
		StudentNote:     body.StudentNote,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bookingId": b.ID})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Svc.GetBooking(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type updateBookingBody struct {
	Status      string `json:"status"`
	StudentNote string `json:"studentNote"`
	TeacherNote string `json:"teacherNote"`
}

// UpdateBooking handles PUT /api/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var body updateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	b, err := h.Svc.UpdateBooking(c.Request.Context(), actorFromContext(c), c.Param("id"), booking.UpdateBookingInput{
		Status:      body.Status,
		StudentNote: body.StudentNote,
		TeacherNote: body.TeacherNote,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles DELETE /api/bookings/:id?reason=...
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	reason := c.Query("reason")

	b, refund, err := h.Svc.CancelBooking(c.Request.Context(), actorFromContext(c), c.Param("id"), reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking": b,
		"refund":  refund,
	})
}

// ListBookings handles GET /api/bookings?userId=&role=student|teacher.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.Svc.ListBookings(c.Request.Context(), actorFromContext(c), c.Query("userId"), c.Query("role"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
