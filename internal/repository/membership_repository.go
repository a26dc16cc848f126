package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sporthub/sporthub-api/internal/model"
)

// MembershipRepo persists subscription plans and memberships.  A
// membership is a reservation over a validity window: it goes PENDING
// at purchase, ACTIVE when its payment verifies and EXPIRED when the
// window lapses or a newer membership activates.
type MembershipRepo struct {
	db *sql.DB
}

// NewMembershipRepo constructs a MembershipRepo given a DB handle.
func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *MembershipRepo) DB() *sql.DB { return r.db }

const planCols = `id, name, tier, price_paise, duration_days, coach_discount_pct, is_active, created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (model.MembershipPlan, error) {
	var p model.MembershipPlan
	err := row.Scan(&p.ID, &p.Name, &p.Tier, &p.PricePaise, &p.DurationDays,
		&p.CoachDiscountPct, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetPlanByID returns a plan or ErrPlanNotFound.
func (r *MembershipRepo) GetPlanByID(ctx context.Context, id uint64) (model.MembershipPlan, error) {
	p, err := scanPlan(r.db.QueryRowContext(ctx,
		`SELECT `+planCols+` FROM membership_plans WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.MembershipPlan{}, ErrPlanNotFound
	}
	return p, err
}

// ListPlans returns plans, optionally only purchasable ones.
func (r *MembershipRepo) ListPlans(ctx context.Context, activeOnly bool) ([]model.MembershipPlan, error) {
	q := `SELECT ` + planCols + ` FROM membership_plans`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY price_paise`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MembershipPlan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePlan inserts a plan and populates its generated id.
func (r *MembershipRepo) CreatePlan(ctx context.Context, p *model.MembershipPlan) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO membership_plans (name, tier, price_paise, duration_days, coach_discount_pct) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Tier, p.PricePaise, p.DurationDays, p.CoachDiscountPct)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// SetPlanActive flips whether the plan can be purchased.
func (r *MembershipRepo) SetPlanActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE membership_plans SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlanNotFound
	}
	return nil
}

const membershipCols = `id, user_id, plan_id, starts_on, ends_on, status, created_at, updated_at`

func scanMembership(row interface{ Scan(...any) error }) (model.Membership, error) {
	var m model.Membership
	var startsOn, endsOn sql.NullTime
	err := row.Scan(&m.ID, &m.UserID, &m.PlanID, &startsOn, &endsOn, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Membership{}, err
	}
	if startsOn.Valid {
		t := startsOn.Time
		m.StartsOn = &t
	}
	if endsOn.Valid {
		t := endsOn.Time
		m.EndsOn = &t
	}
	return m, nil
}

// CreatePendingTx inserts a PENDING membership for a user and plan.
func (r *MembershipRepo) CreatePendingTx(ctx context.Context, tx *sql.Tx, userID, planID uint64) (model.Membership, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO memberships (user_id, plan_id, status) VALUES (?, ?, 'PENDING')`,
		userID, planID)
	if err != nil {
		return model.Membership{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Membership{}, err
	}
	return scanMembership(tx.QueryRowContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE id = ?`, uint64(id)))
}

// GetByID returns a membership without locking.
func (r *MembershipRepo) GetByID(ctx context.Context, id uint64) (model.Membership, error) {
	return scanMembership(r.db.QueryRowContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE id = ?`, id))
}

// GetForUpdateTx loads a membership under a row lock.  Activation after
// payment verify reads through here.
func (r *MembershipRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Membership, error) {
	return scanMembership(tx.QueryRowContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE id = ? FOR UPDATE`, id))
}

// ActivateTx marks a membership ACTIVE with the given validity window
// after expiring any other active membership of the same user, keeping
// the one-active-membership invariant inside a single transaction.
func (r *MembershipRepo) ActivateTx(ctx context.Context, tx *sql.Tx, id, userID uint64, startsOn, endsOn time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE memberships SET status = 'EXPIRED' WHERE user_id = ? AND status = 'ACTIVE' AND id <> ?`,
		userID, id); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE memberships SET status = 'ACTIVE', starts_on = ?, ends_on = ? WHERE id = ?`,
		startsOn.UTC().Format("2006-01-02"), endsOn.UTC().Format("2006-01-02"), id)
	return err
}

// MembershipWithPlan pairs a membership with its plan for responses and
// for the coach pricing lookup.
type MembershipWithPlan struct {
	Membership model.Membership
	Plan       model.MembershipPlan
}

// ActiveForUser returns the user's active, in-window membership with
// its plan.  sql.ErrNoRows means the user has none and pays full rate.
func (r *MembershipRepo) ActiveForUser(ctx context.Context, userID uint64) (MembershipWithPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT m.id, m.user_id, m.plan_id, m.starts_on, m.ends_on, m.status, m.created_at, m.updated_at,
				p.id, p.name, p.tier, p.price_paise, p.duration_days, p.coach_discount_pct, p.is_active, p.created_at, p.updated_at
		   FROM memberships m
		   JOIN membership_plans p ON p.id = m.plan_id
		  WHERE m.user_id = ? AND m.status = 'ACTIVE' AND m.ends_on >= CURDATE()
		  ORDER BY m.ends_on DESC
		  LIMIT 1`, userID)
	var out MembershipWithPlan
	var startsOn, endsOn sql.NullTime
	err := row.Scan(&out.Membership.ID, &out.Membership.UserID, &out.Membership.PlanID,
		&startsOn, &endsOn, &out.Membership.Status, &out.Membership.CreatedAt, &out.Membership.UpdatedAt,
		&out.Plan.ID, &out.Plan.Name, &out.Plan.Tier, &out.Plan.PricePaise, &out.Plan.DurationDays,
		&out.Plan.CoachDiscountPct, &out.Plan.IsActive, &out.Plan.CreatedAt, &out.Plan.UpdatedAt)
	if err != nil {
		return MembershipWithPlan{}, err
	}
	if startsOn.Valid {
		t := startsOn.Time
		out.Membership.StartsOn = &t
	}
	if endsOn.Valid {
		t := endsOn.Time
		out.Membership.EndsOn = &t
	}
	return out, nil
}

// ListByUser returns the user's memberships, newest first.
func (r *MembershipRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+membershipCols+` FROM memberships WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ExpireLapsed marks active memberships whose window has ended as
// EXPIRED.  The sweeper calls this alongside the booking hold sweep.
func (r *MembershipRepo) ExpireLapsed(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE memberships SET status = 'EXPIRED' WHERE status = 'ACTIVE' AND ends_on < CURDATE()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
