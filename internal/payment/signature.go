package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex HMAC-SHA256 over "orderID|paymentID" with the
// gateway shared secret.  This matches the signature Razorpay attaches
// to checkout callbacks.
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the callback signature and compares it to
// the supplied one in constant time.  Any mismatch fails closed; the
// caller must not mutate state on a false return.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	want := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(want), []byte(signature))
}
