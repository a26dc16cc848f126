package model

import "time"

// Coach represents a coach offering paid one-on-one sessions.  A user
// may not hold two overlapping non-terminal bookings with the same
// coach; availability is therefore binary per (user, coach, window).
//
// Fields:
//  ID              – primary key identifier.
//  Name            – coach display name.
//  Sport           – sport the coach teaches.
//  Bio             – optional biography text.
//  HourlyRatePaise – session rate in paise per hour, before any
//                    membership-tier discount.
//  IsActive        – whether the coach accepts new bookings.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Coach struct {
	ID              uint64    // coaches.id
	Name            string    // coaches.name
	Sport           string    // coaches.sport
	Bio             *string   // coaches.bio (nullable)
	HourlyRatePaise uint32    // coaches.hourly_rate_paise
	IsActive        bool      // coaches.is_active
	CreatedAt       time.Time // coaches.created_at
	UpdatedAt       time.Time // coaches.updated_at
}
