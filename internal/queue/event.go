// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking is confirmed through
// payment verification or admin approval.  It carries enough context for
// downstream consumers to log or notify without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID    uint64 `json:"booking_id"`
	UserID       uint64 `json:"user_id"`
	Kind         string `json:"kind"`
	ResourceName string `json:"resource_name,omitempty"`
	SlotDate     string `json:"slot_date,omitempty"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`
	Quantity     uint32 `json:"quantity"`
	AmountPaise  uint32 `json:"amount_paise"`
	ConfirmedAt  string `json:"confirmed_at"`
}

// PaymentCompletedEvent is published after a gateway callback verifies
// and the payment row reaches COMPLETED.
type PaymentCompletedEvent struct {
	PaymentID        uint64 `json:"payment_id"`
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	BookingID        uint64 `json:"booking_id,omitempty"`
	MembershipID     uint64 `json:"membership_id,omitempty"`
	AmountPaise      uint32 `json:"amount_paise"`
	CompletedAt      string `json:"completed_at"`
}
