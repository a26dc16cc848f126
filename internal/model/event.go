package model

import "time"

// EventSlotStatus enumerates the states of a ticketed event slot.  The
// SOLD_OUT state is derived: it is flipped by the reservation protocol
// when booked_seats reaches total_seats and flipped back when a
// cancellation frees capacity.
type EventSlotStatus string

const (
	SlotOpen     EventSlotStatus = "OPEN"
	SlotSoldOut  EventSlotStatus = "SOLD_OUT"
	SlotDisabled EventSlotStatus = "DISABLED"
)

// Event represents a ticketed sports event (a tournament day, an
// exhibition match).  Tickets are sold per slot, not per event; an
// event may run multiple dated slots.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – event title.
//  Venue       – where the event takes place.
//  Description – optional free-text description.
//  IsActive    – whether the event is visible and bookable.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          uint64    // events.id
	Title       string    // events.title
	Venue       string    // events.venue
	Description *string   // events.description (nullable)
	IsActive    bool      // events.is_active
	CreatedAt   time.Time // events.created_at
	UpdatedAt   time.Time // events.updated_at
}

// EventSlot is the unit of ticket capacity for an event.  The invariant
// booked_seats <= total_seats holds at all times; booked_seats only
// changes inside the reservation protocol under a row lock.
//
// Fields:
//  ID                – primary key identifier.
//  EventID           – event to which this slot belongs.
//  StartsAt          – when the slot begins (UTC).
//  EndsAt            – when the slot ends (UTC).
//  PricePerSeatPaise – ticket price in paise.
//  TotalSeats        – capacity of the slot.
//  BookedSeats       – seats currently consumed by non-terminal bookings.
//  Status            – OPEN, SOLD_OUT or DISABLED.
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type EventSlot struct {
	ID                uint64          // event_slots.id
	EventID           uint64          // event_slots.event_id
	StartsAt          time.Time       // event_slots.starts_at
	EndsAt            time.Time       // event_slots.ends_at
	PricePerSeatPaise uint32          // event_slots.price_per_seat_paise
	TotalSeats        uint32          // event_slots.total_seats
	BookedSeats       uint32          // event_slots.booked_seats
	Status            EventSlotStatus // event_slots.status
	CreatedAt         time.Time       // event_slots.created_at
	UpdatedAt         time.Time       // event_slots.updated_at
}
