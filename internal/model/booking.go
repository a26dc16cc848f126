package model

import "time"

// BookingKind identifies which capacity model a booking consumes.
type BookingKind string

const (
	KindFacility BookingKind = "FACILITY"
	KindEvent    BookingKind = "EVENT"
	KindCoach    BookingKind = "COACH"
)

// BookingStatus enumerates the reservation state machine.  All three
// booking kinds share one machine: capacity is held at PENDING creation
// and released when a booking leaves the active set (CANCELLED or
// REJECTED).  CONFIRMED is reached only through payment verification or
// an admin approval; COMPLETED marks a consumed booking after the slot
// has passed.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Booking records a user's claim against a facility slot, event slot or
// coach window.  Exactly one of FacilityID, EventSlotID and CoachID is
// set, matching Kind.  The `active` column (1 for non-terminal rows,
// NULL otherwise) participates in a composite unique key over the
// facility tuple so that two concurrent claims on the same slot cannot
// both insert.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who made the booking.
//  Kind        – FACILITY, EVENT or COACH.
//  FacilityID  – facility reference (facility bookings only).
//  EventSlotID – event slot reference (event bookings only).
//  CoachID     – coach reference (coach bookings only).
//  SlotDate    – date of the booked window ("2006-01-02"); zero for
//                event bookings, whose window lives on the slot row.
//  StartTime   – window start ("HH:MM"); facility and coach bookings.
//  EndTime     – window end ("HH:MM").
//  Quantity    – seats claimed (always 1 except event bookings, 1..3).
//  AmountPaise – computed total price in paise.
//  Status      – current state of the booking.
//  ExpiresAt   – when a PENDING booking's capacity hold lapses.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          uint64        // bookings.id
	UserID      uint64        // bookings.user_id
	Kind        BookingKind   // bookings.kind
	FacilityID  *uint64       // bookings.facility_id (nullable)
	EventSlotID *uint64       // bookings.event_slot_id (nullable)
	CoachID     *uint64       // bookings.coach_id (nullable)
	SlotDate    string        // bookings.slot_date
	StartTime   string        // bookings.start_time
	EndTime     string        // bookings.end_time
	Quantity    uint32        // bookings.quantity
	AmountPaise uint32        // bookings.amount_paise
	Status      BookingStatus // bookings.status
	ExpiresAt   time.Time     // bookings.expires_at
	CreatedAt   time.Time     // bookings.created_at
	UpdatedAt   time.Time     // bookings.updated_at
}
