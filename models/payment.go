package models

// --- Payment intent DTOs ---

// CreateIntentRequest is the client request to start a card payment.
type CreateIntentRequest struct {
	BookingID string            `json:"bookingId" binding:"required"`
	Amount    int64             `json:"amount" binding:"required"`
	Currency  string            `json:"currency" binding:"required"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CreateIntentResponse carries the provider reference back to the client.
type CreateIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
}

// ConfirmIntentResponse reports the state after a pull-based confirmation check.
type ConfirmIntentResponse struct {
	PaymentIntentID string `json:"paymentIntentId"`
	PaymentStatus   string `json:"paymentStatus"`
	BookingStatus   string `json:"bookingStatus"`
}

// RefundRequest asks for a full or partial refund of a paid booking.
type RefundRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Amount    int64  `json:"amount,omitempty"` // zero means full refund
	Reason    string `json:"reason,omitempty"`
}

// RefundResponse reports the provider-side refund outcome.
type RefundResponse struct {
	RefundID string `json:"refundId"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

// RefundCalculation is the advisory result of applying the cancellation
// policy to a booking. It is computed, never persisted.
type RefundCalculation struct {
	OriginalAmount  int64  `json:"originalAmount"`
	RefundAmount    int64  `json:"refundAmount"`
	RefundRate      int    `json:"refundRate"`
	CancellationFee int64  `json:"cancellationFee"`
	Reason          string `json:"reason"`
}
