// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// string matching: ErrForbidden maps to 403, ErrConflict to 409,
// ErrNotAvailable to the "seat lost" family of responses.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as approving a booking that is no longer
// pending.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrNotAvailable is returned when capacity for the requested resource
// is exhausted or the resource rejects new bookings.  The losing side
// of a concurrent seat race receives this error; the transaction that
// produced it must have been rolled back in full.
var ErrNotAvailable = errors.New("not available")

// ErrAlreadyPaid is returned when a payment order is requested for a
// booking that already has a completed payment.
var ErrAlreadyPaid = errors.New("already paid")

// ErrFacilityNotFound indicates the facility id does not exist.
var ErrFacilityNotFound = errors.New("facility not found")

// ErrSlotNotFound indicates the event slot id does not exist.
var ErrSlotNotFound = errors.New("event slot not found")

// ErrCoachNotFound indicates the coach id does not exist.
var ErrCoachNotFound = errors.New("coach not found")

// ErrPlanNotFound indicates the membership plan id does not exist.
var ErrPlanNotFound = errors.New("membership plan not found")
