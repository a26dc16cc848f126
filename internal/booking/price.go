// Package booking holds the pure decision logic of the reservation
// protocol: pricing, per-user quantity caps and the booking state
// machine.  Nothing in this package touches the database; repositories
// and handlers feed it values and act on its verdicts, which keeps the
// rules testable without a MySQL instance.
package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sporthub/sporthub-api/internal/model"
)

// ErrBadTime reports a time-of-day string that is not "HH:MM" 24h.
var ErrBadTime = errors.New("invalid time of day, want HH:MM")

// ErrEmptyWindow reports a zero-length booking window.
var ErrEmptyWindow = errors.New("window start and end are equal")

// minutesPerDay is the wrap modulus for midnight-crossing windows.
const minutesPerDay = 24 * 60

// ParseTimeOfDay converts "HH:MM" into minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, ErrBadTime
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, ErrBadTime
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, ErrBadTime
	}
	return h*60 + m, nil
}

// WindowMinutes returns the duration of a booking window in minutes.
// Windows are pure durations: an end at or before the start means the
// window crosses midnight (23:00–00:30 is 90 minutes), never a negative
// or calendar-anchored value.
func WindowMinutes(start, end string) (int, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return 0, fmt.Errorf("start: %w", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return 0, fmt.Errorf("end: %w", err)
	}
	if s == e {
		return 0, ErrEmptyWindow
	}
	mins := e - s
	if mins < 0 {
		mins += minutesPerDay
	}
	return mins, nil
}

// FacilityAmount computes the price of a facility window: the hourly
// rate prorated by the window length.  All arithmetic stays in integer
// paise; the division happens last to avoid rounding per-hour.
func FacilityAmount(pricePerHourPaise uint32, start, end string) (uint32, error) {
	mins, err := WindowMinutes(start, end)
	if err != nil {
		return 0, err
	}
	return uint32(uint64(pricePerHourPaise) * uint64(mins) / 60), nil
}

// EventAmount computes the price of an event booking.
func EventAmount(pricePerSeatPaise uint32, quantity uint32) uint32 {
	return pricePerSeatPaise * quantity
}

// CoachAmount computes the price of a coach session: the hourly rate
// prorated by the window, minus the membership-tier discount.  A
// discountPct of 25 on a one-hour session at 100000 paise yields 75000.
func CoachAmount(hourlyRatePaise uint32, start, end string, discountPct uint32) (uint32, error) {
	mins, err := WindowMinutes(start, end)
	if err != nil {
		return 0, err
	}
	if discountPct > 100 {
		discountPct = 100
	}
	gross := uint64(hourlyRatePaise) * uint64(mins) / 60
	return uint32(gross * uint64(100-discountPct) / 100), nil
}

// DiscountForTier maps a membership tier to its coach-session discount
// percentage.  Non-members and BASIC members pay full rate.
func DiscountForTier(tier model.MembershipTier) uint32 {
	switch tier {
	case model.TierElite:
		return 25
	case model.TierPro:
		return 10
	default:
		return 0
	}
}
