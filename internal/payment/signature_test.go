package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	const secret = "test_secret"
	sig := Sign("order_abc", "pay_xyz", secret)
	assert.NotEmpty(t, sig)
	assert.Len(t, sig, 64) // hex-encoded SHA-256

	assert.True(t, VerifySignature("order_abc", "pay_xyz", sig, secret))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	const secret = "test_secret"
	sig := Sign("order_abc", "pay_xyz", secret)

	// different payment id
	assert.False(t, VerifySignature("order_abc", "pay_other", sig, secret))
	// different order id
	assert.False(t, VerifySignature("order_other", "pay_xyz", sig, secret))
	// flipped signature byte
	tampered := "0" + sig[1:]
	if tampered == sig {
		tampered = "1" + sig[1:]
	}
	assert.False(t, VerifySignature("order_abc", "pay_xyz", tampered, secret))
	// wrong secret
	assert.False(t, VerifySignature("order_abc", "pay_xyz", sig, "other_secret"))
	// empty signature
	assert.False(t, VerifySignature("order_abc", "pay_xyz", "", secret))
}

func TestSignIsDeterministic(t *testing.T) {
	assert.Equal(t,
		Sign("order_1", "pay_1", "s"),
		Sign("order_1", "pay_1", "s"))
	assert.NotEqual(t,
		Sign("order_1", "pay_1", "s"),
		Sign("order_1", "pay_2", "s"))
}
