package booking

import (
	"errors"
	"fmt"
)

// MaxSeatsPerUser caps event tickets per user per slot, cumulative
// across that user's pending and confirmed bookings for the slot.
const MaxSeatsPerUser = 3

// ErrNotAvailable reports that the requested capacity is exhausted or
// the resource rejects new bookings.  Losers of a seat race receive
// this error; nothing is partially applied on their behalf.
var ErrNotAvailable = errors.New("not available")

// LimitExceededError reports a request beyond the per-user ticket cap.
// Remaining carries how many seats the user may still book so handlers
// can surface an actionable message.
type LimitExceededError struct {
	Remaining uint32
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("only %d more seat(s) can be booked for this slot", e.Remaining)
}

// ValidateQuantity applies the event booking admission rules: the
// requested quantity must be 1..MaxSeatsPerUser, must keep the user's
// cumulative total for the slot within the cap, and must fit in the
// slot's remaining seats.  The checks run in that order so a user over
// the cap is told about the cap even when the slot is also short.
func ValidateQuantity(quantity, alreadyBooked, seatsLeft uint32) error {
	if quantity < 1 || quantity > MaxSeatsPerUser {
		return &LimitExceededError{Remaining: remaining(alreadyBooked)}
	}
	if alreadyBooked+quantity > MaxSeatsPerUser {
		return &LimitExceededError{Remaining: remaining(alreadyBooked)}
	}
	if quantity > seatsLeft {
		return ErrNotAvailable
	}
	return nil
}

func remaining(alreadyBooked uint32) uint32 {
	if alreadyBooked >= MaxSeatsPerUser {
		return 0
	}
	return MaxSeatsPerUser - alreadyBooked
}
