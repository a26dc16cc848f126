package repository

import (
	"context"
	"database/sql"

	"github.com/sporthub/sporthub-api/internal/model"
)

// CoachRepo manages persistence for coaches.  Coach capacity is binary
// per (user, coach, window): the overlap check lives on BookingRepo,
// this repository supplies the coach row and the lock that serializes
// bookings against one coach.
type CoachRepo struct {
	db *sql.DB
}

// NewCoachRepo constructs a CoachRepo given a DB handle.
func NewCoachRepo(db *sql.DB) *CoachRepo { return &CoachRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *CoachRepo) DB() *sql.DB { return r.db }

const coachCols = `id, name, sport, bio, hourly_rate_paise, is_active, created_at, updated_at`

func scanCoach(row interface{ Scan(...any) error }) (model.Coach, error) {
	var c model.Coach
	var bio sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Sport, &bio, &c.HourlyRatePaise, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Coach{}, err
	}
	if bio.Valid {
		b := bio.String
		c.Bio = &b
	}
	return c, nil
}

// GetByID returns a coach or ErrCoachNotFound.
func (r *CoachRepo) GetByID(ctx context.Context, id uint64) (model.Coach, error) {
	c, err := scanCoach(r.db.QueryRowContext(ctx,
		`SELECT `+coachCols+` FROM coaches WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Coach{}, ErrCoachNotFound
	}
	return c, err
}

// GetForUpdateTx loads a coach under a row lock so the overlap
// check-then-insert for that coach runs serialized.
func (r *CoachRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Coach, error) {
	c, err := scanCoach(tx.QueryRowContext(ctx,
		`SELECT `+coachCols+` FROM coaches WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return model.Coach{}, ErrCoachNotFound
	}
	return c, err
}

// List returns coaches, optionally only active ones.
func (r *CoachRepo) List(ctx context.Context, activeOnly bool) ([]model.Coach, error) {
	q := `SELECT ` + coachCols + ` FROM coaches`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Coach, 0)
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a coach and populates its generated id.
func (r *CoachRepo) Create(ctx context.Context, c *model.Coach) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO coaches (name, sport, bio, hourly_rate_paise) VALUES (?, ?, ?, ?)`,
		c.Name, c.Sport, c.Bio, c.HourlyRatePaise)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// SetActive flips whether the coach accepts new bookings.
func (r *CoachRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coaches SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCoachNotFound
	}
	return nil
}
