// Package payment integrates the Razorpay-shaped gateway: order
// creation over HTTP and HMAC signature verification of checkout
// callbacks.  The Gateway interface keeps handlers testable against
// the mock implementation.
package payment

import "context"

// Order is the gateway's record of an amount to be collected.  Amounts
// are integer minor units (paise); the gateway never sees rupees.
type Order struct {
	ID          string // gateway order id ("order_...")
	AmountPaise uint32 // order amount in paise
	Currency    string // ISO currency code
	Receipt     string // caller-supplied correlation id
}

// Gateway mints payment orders with an external provider.  CreateOrder
// failures are transient from the caller's perspective: no local state
// changes and the client may re-initiate checkout.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise uint32, currency, receipt string) (Order, error)
}
