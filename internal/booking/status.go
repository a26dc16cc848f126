package booking

import (
	"errors"

	"github.com/sporthub/sporthub-api/internal/model"
)

// ErrInvalidTransition reports a booking status change the state
// machine does not permit, such as cancelling a completed booking.
var ErrInvalidTransition = errors.New("invalid status transition")

// IsTerminal reports whether a status releases or never held capacity.
// Terminal rows carry a NULL `active` key so they drop out of the
// facility-tuple unique constraint and of availability queries.
func IsTerminal(s model.BookingStatus) bool {
	switch s {
	case model.BookingCancelled, model.BookingRejected, model.BookingCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from one status to
// another.  One machine covers all three kinds: PENDING bookings can be
// confirmed (payment verify, admin approve), rejected (admin) or
// cancelled (owner, admin, expiry sweep); CONFIRMED bookings can be
// cancelled before use or completed after the slot passes.  Terminal
// states accept no further transitions.
func CanTransition(from, to model.BookingStatus) bool {
	switch from {
	case model.BookingPending:
		switch to {
		case model.BookingConfirmed, model.BookingCancelled, model.BookingRejected:
			return true
		}
	case model.BookingConfirmed:
		switch to {
		case model.BookingCancelled, model.BookingCompleted:
			return true
		}
	}
	return false
}

// ReleasesCapacity reports whether moving from `from` to `to` must
// return held capacity to the resource.  Capacity is held from PENDING
// creation onward, so any move from a non-terminal state into
// CANCELLED or REJECTED frees it.  COMPLETED consumes the capacity for
// good and releases nothing.
func ReleasesCapacity(from, to model.BookingStatus) bool {
	if IsTerminal(from) {
		return false
	}
	return to == model.BookingCancelled || to == model.BookingRejected
}
