package repository

import (
	"context"
	"database/sql"

	"github.com/sporthub/sporthub-api/internal/model"
)

// FacilityRepo manages persistence for facilities.  Facility capacity
// is binary per (date, start, end) tuple; the tuple itself lives on
// booking rows, so this repository only handles the facility catalog
// and the row lock that serializes claims against one facility.
type FacilityRepo struct {
	db *sql.DB
}

// NewFacilityRepo constructs a FacilityRepo given a DB handle.
func NewFacilityRepo(db *sql.DB) *FacilityRepo { return &FacilityRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *FacilityRepo) DB() *sql.DB { return r.db }

const facilityCols = `id, name, sport, description, price_per_hour_paise, open_time, close_time, status, created_at, updated_at`

func scanFacility(row interface{ Scan(...any) error }) (model.Facility, error) {
	var f model.Facility
	var desc sql.NullString
	err := row.Scan(&f.ID, &f.Name, &f.Sport, &desc, &f.PricePerHourPaise,
		&f.OpenTime, &f.CloseTime, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return model.Facility{}, err
	}
	if desc.Valid {
		d := desc.String
		f.Description = &d
	}
	return f, nil
}

// GetByID returns a facility or ErrFacilityNotFound.
func (r *FacilityRepo) GetByID(ctx context.Context, id uint64) (model.Facility, error) {
	f, err := scanFacility(r.db.QueryRowContext(ctx,
		`SELECT `+facilityCols+` FROM facilities WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Facility{}, ErrFacilityNotFound
	}
	return f, err
}

// GetForUpdateTx loads a facility under a row lock.  Every claim
// against a facility locks this row first, which serializes the
// check-then-insert of the booking tuple for that facility.
func (r *FacilityRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Facility, error) {
	f, err := scanFacility(tx.QueryRowContext(ctx,
		`SELECT `+facilityCols+` FROM facilities WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return model.Facility{}, ErrFacilityNotFound
	}
	return f, err
}

// List returns facilities, optionally filtered to OPEN ones for public
// browse responses.
func (r *FacilityRepo) List(ctx context.Context, openOnly bool) ([]model.Facility, error) {
	q := `SELECT ` + facilityCols + ` FROM facilities`
	if openOnly {
		q += ` WHERE status = 'OPEN'`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Facility, 0)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Create inserts a facility and populates generated fields.
func (r *FacilityRepo) Create(ctx context.Context, f *model.Facility) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO facilities (name, sport, description, price_per_hour_paise, open_time, close_time) VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.Sport, f.Description, f.PricePerHourPaise, f.OpenTime, f.CloseTime)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	got, err := scanFacility(r.db.QueryRowContext(ctx,
		`SELECT `+facilityCols+` FROM facilities WHERE id = ?`, f.ID))
	if err != nil {
		return err
	}
	*f = got
	return nil
}

// Update rewrites the editable facility fields.
func (r *FacilityRepo) Update(ctx context.Context, f model.Facility) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE facilities SET name = ?, sport = ?, description = ?, price_per_hour_paise = ?, open_time = ?, close_time = ? WHERE id = ?`,
		f.Name, f.Sport, f.Description, f.PricePerHourPaise, f.OpenTime, f.CloseTime, f.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFacilityNotFound
	}
	return nil
}

// SetStatus flips a facility between OPEN and DISABLED.
func (r *FacilityRepo) SetStatus(ctx context.Context, id uint64, status model.FacilityStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE facilities SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrFacilityNotFound
	}
	return nil
}
