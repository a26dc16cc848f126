package model

import "time"

// FacilityStatus enumerates the lifecycle states of a facility.  A
// DISABLED facility is hidden from browse responses and rejects new
// bookings; existing bookings are unaffected.
type FacilityStatus string

const (
	FacilityOpen     FacilityStatus = "OPEN"
	FacilityDisabled FacilityStatus = "DISABLED"
)

// Facility represents a bookable sports facility such as a turf,
// badminton court or swimming pool.  A facility is booked in whole-slot
// windows: a (date, start_time, end_time) tuple is either free or taken.
// This struct corresponds to a row in the `facilities` table.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – display name of the facility.
//  Sport             – sport category (e.g. "football", "badminton").
//  Description       – optional free-text description.
//  PricePerHourPaise – hourly rate in paise (integer minor units).
//  OpenTime          – daily opening time ("HH:MM", 24h).
//  CloseTime         – daily closing time ("HH:MM", 24h).
//  Status            – OPEN or DISABLED.
//  CreatedAt         – timestamp when the facility was created.
//  UpdatedAt         – timestamp of last update.
type Facility struct {
	ID                uint64         // facilities.id
	Name              string         // facilities.name
	Sport             string         // facilities.sport
	Description       *string        // facilities.description (nullable)
	PricePerHourPaise uint32         // facilities.price_per_hour_paise
	OpenTime          string         // facilities.open_time
	CloseTime         string         // facilities.close_time
	Status            FacilityStatus // facilities.status
	CreatedAt         time.Time      // facilities.created_at
	UpdatedAt         time.Time      // facilities.updated_at
}
