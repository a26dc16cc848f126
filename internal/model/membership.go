package model

import "time"

// MembershipTier enumerates plan tiers.  The tier drives the coach
// session discount: ELITE members pay 25% less per session hour.
type MembershipTier string

const (
	TierBasic MembershipTier = "BASIC"
	TierPro   MembershipTier = "PRO"
	TierElite MembershipTier = "ELITE"
)

// MembershipStatus enumerates subscription states.  A membership is
// PENDING until its payment verifies, ACTIVE for its validity window
// and EXPIRED afterwards.  A user holds at most one ACTIVE membership;
// activating a new one expires any prior active one in the same
// transaction.
type MembershipStatus string

const (
	MembershipPending MembershipStatus = "PENDING"
	MembershipActive  MembershipStatus = "ACTIVE"
	MembershipExpired MembershipStatus = "EXPIRED"
)

// MembershipPlan is a purchasable subscription template.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – display name of the plan.
//  Tier             – BASIC, PRO or ELITE.
//  PricePaise       – plan price in paise.
//  DurationDays     – validity window length in days.
//  CoachDiscountPct – percentage discount on coach sessions (0–100).
//  IsActive         – whether the plan can be purchased.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type MembershipPlan struct {
	ID               uint64         // membership_plans.id
	Name             string         // membership_plans.name
	Tier             MembershipTier // membership_plans.tier
	PricePaise       uint32         // membership_plans.price_paise
	DurationDays     uint32         // membership_plans.duration_days
	CoachDiscountPct uint32         // membership_plans.coach_discount_pct
	IsActive         bool           // membership_plans.is_active
	CreatedAt        time.Time      // membership_plans.created_at
	UpdatedAt        time.Time      // membership_plans.updated_at
}

// Membership is a user's subscription instance.  It is a reservation
// with a validity window instead of seat capacity: no Capacity Releaser
// involvement, only date arithmetic.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – subscribing user.
//  PlanID    – purchased plan.
//  StartsOn  – first day of validity (set at activation).
//  EndsOn    – last day of validity.
//  Status    – PENDING, ACTIVE or EXPIRED.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Membership struct {
	ID        uint64           // memberships.id
	UserID    uint64           // memberships.user_id
	PlanID    uint64           // memberships.plan_id
	StartsOn  *time.Time       // memberships.starts_on (nullable until active)
	EndsOn    *time.Time       // memberships.ends_on (nullable until active)
	Status    MembershipStatus // memberships.status
	CreatedAt time.Time        // memberships.created_at
	UpdatedAt time.Time        // memberships.updated_at
}
