package repository

import (
	"context"
	"database/sql"

	"github.com/sporthub/sporthub-api/internal/model"
)

// EventRepo manages persistence for events and their ticketed slots.
// Seat counters only move inside the methods that take a transaction:
// callers lock the slot row first, then take or release seats, so the
// booked_seats <= total_seats invariant is enforced under the lock and
// backed by the guarded UPDATE.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo given a DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *EventRepo) DB() *sql.DB { return r.db }

const slotCols = `id, event_id, starts_at, ends_at, price_per_seat_paise, total_seats, booked_seats, status, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (model.EventSlot, error) {
	var s model.EventSlot
	err := row.Scan(&s.ID, &s.EventID, &s.StartsAt, &s.EndsAt, &s.PricePerSeatPaise,
		&s.TotalSeats, &s.BookedSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetSlotByID returns a slot or ErrSlotNotFound.
func (r *EventRepo) GetSlotByID(ctx context.Context, id uint64) (model.EventSlot, error) {
	s, err := scanSlot(r.db.QueryRowContext(ctx,
		`SELECT `+slotCols+` FROM event_slots WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.EventSlot{}, ErrSlotNotFound
	}
	return s, err
}

// GetSlotForUpdateTx loads a slot under a row lock.  All seat
// arithmetic for the slot happens while this lock is held.
func (r *EventRepo) GetSlotForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.EventSlot, error) {
	s, err := scanSlot(tx.QueryRowContext(ctx,
		`SELECT `+slotCols+` FROM event_slots WHERE id = ? FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return model.EventSlot{}, ErrSlotNotFound
	}
	return s, err
}

// TakeSeatsTx consumes qty seats from a slot.  The UPDATE is guarded so
// that even a caller that skipped the row lock cannot push
// booked_seats past total_seats; zero affected rows means the seats
// were gone and the caller must roll back with ErrNotAvailable.  The
// same statement flips the slot to SOLD_OUT when it fills.
func (r *EventRepo) TakeSeatsTx(ctx context.Context, tx *sql.Tx, slotID uint64, qty uint32) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE event_slots
			SET booked_seats = booked_seats + ?,
				status = IF(booked_seats + ? >= total_seats, 'SOLD_OUT', status)
		  WHERE id = ? AND status = 'OPEN' AND booked_seats + ? <= total_seats`,
		qty, qty, slotID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotAvailable
	}
	return nil
}

// ReleaseSeatsTx returns qty seats to a slot and reopens it if it had
// sold out.  Releasing more than is booked clamps at zero so the call
// stays idempotent for already-released bookings.
func (r *EventRepo) ReleaseSeatsTx(ctx context.Context, tx *sql.Tx, slotID uint64, qty uint32) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE event_slots
			SET booked_seats = GREATEST(CAST(booked_seats AS SIGNED) - ?, 0),
				status = IF(status = 'SOLD_OUT', 'OPEN', status)
		  WHERE id = ?`,
		qty, slotID)
	return err
}

// ListSlots returns the slots of one event ordered by start time.
func (r *EventRepo) ListSlots(ctx context.Context, eventID uint64) ([]model.EventSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+slotCols+` FROM event_slots WHERE event_id = ? ORDER BY starts_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.EventSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListEvents returns events, optionally only active ones.
func (r *EventRepo) ListEvents(ctx context.Context, activeOnly bool) ([]model.Event, error) {
	q := `SELECT id, title, venue, description, is_active, created_at, updated_at FROM events`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		var desc sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.Venue, &desc, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			e.Description = &d
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateEvent inserts an event and populates its generated id.
func (r *EventRepo) CreateEvent(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (title, venue, description) VALUES (?, ?, ?)`,
		e.Title, e.Venue, e.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// CreateSlot inserts an event slot and populates its generated id.
func (r *EventRepo) CreateSlot(ctx context.Context, s *model.EventSlot) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO event_slots (event_id, starts_at, ends_at, price_per_seat_paise, total_seats) VALUES (?, ?, ?, ?, ?)`,
		s.EventID, s.StartsAt.UTC(), s.EndsAt.UTC(), s.PricePerSeatPaise, s.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// SetSlotStatus flips a slot between OPEN and DISABLED.  SOLD_OUT is
// never set here; only the reservation protocol derives it.
func (r *EventRepo) SetSlotStatus(ctx context.Context, id uint64, status model.EventSlotStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE event_slots SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotNotFound
	}
	return nil
}
