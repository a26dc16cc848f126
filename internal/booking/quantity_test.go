package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuantity(t *testing.T) {
	// plenty of seats, under the cap
	assert.NoError(t, ValidateQuantity(2, 0, 10))
	assert.NoError(t, ValidateQuantity(3, 0, 3))
	assert.NoError(t, ValidateQuantity(1, 2, 10))

	// zero and oversized requests hit the cap error
	assert.Error(t, ValidateQuantity(0, 0, 10))
	assert.Error(t, ValidateQuantity(4, 0, 10))

	// slot shorter than the request
	assert.ErrorIs(t, ValidateQuantity(3, 0, 2), ErrNotAvailable)
}

func TestValidateQuantityCumulativeCap(t *testing.T) {
	// user holds 2 seats and asks for 2 more: the cap message names the
	// single seat still available to them
	err := ValidateQuantity(2, 2, 10)
	var limitErr *LimitExceededError
	assert.True(t, errors.As(err, &limitErr))
	assert.Equal(t, uint32(1), limitErr.Remaining)
	assert.Equal(t, "only 1 more seat(s) can be booked for this slot", err.Error())

	// at the cap the remaining count is zero
	err = ValidateQuantity(1, 3, 10)
	assert.True(t, errors.As(err, &limitErr))
	assert.Equal(t, uint32(0), limitErr.Remaining)
}

func TestValidateQuantityCapBeforeSeats(t *testing.T) {
	// when the user is over the cap AND the slot is short, the cap wins
	// so the message is actionable
	err := ValidateQuantity(3, 2, 1)
	var limitErr *LimitExceededError
	assert.True(t, errors.As(err, &limitErr))
}
