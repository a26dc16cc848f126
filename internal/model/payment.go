package model

import "time"

// PaymentStatus enumerates gateway transaction states.  A payment
// reaches COMPLETED exactly once; re-delivered callbacks for a
// COMPLETED payment are answered without side effects.  SUPERSEDED
// marks a pending payment that was replaced by a newer order for the
// same booking so that two live orders never target one reservation.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
	PaymentSuperseded PaymentStatus = "SUPERSEDED"
)

// Payment is the local record of an external Razorpay order.  Exactly
// one of BookingID and MembershipID is set.  GatewayPaymentID and
// Signature stay nil until the callback is verified.
//
// Fields:
//  ID               – primary key identifier.
//  BookingID        – booking being paid for (nullable).
//  MembershipID     – membership being paid for (nullable).
//  AmountPaise      – order amount in paise (minor units, as sent to
//                     the gateway).
//  Currency         – ISO currency code; always "INR".
//  GatewayOrderID   – Razorpay order id, unique.
//  GatewayPaymentID – Razorpay payment id, captured at verification.
//  Signature        – verified callback signature.
//  Status           – current payment state.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Payment struct {
	ID               uint64        // payments.id
	BookingID        *uint64       // payments.booking_id (nullable)
	MembershipID     *uint64       // payments.membership_id (nullable)
	AmountPaise      uint32        // payments.amount_paise
	Currency         string        // payments.currency
	GatewayOrderID   string        // payments.gateway_order_id
	GatewayPaymentID *string       // payments.gateway_payment_id (nullable)
	Signature        *string       // payments.signature (nullable)
	Status           PaymentStatus // payments.status
	CreatedAt        time.Time     // payments.created_at
	UpdatedAt        time.Time     // payments.updated_at
}
