package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/model"
)

// BookingRepo provides data access for the reservation ledger.  Every
// method that can move capacity takes a transaction: the caller locks
// the contended resource row first (facility, event slot or coach),
// then checks availability and writes the booking inside the same
// transaction so a concurrent claim either waits on the lock or loses
// at the unique key.
//
// The bookings table carries an `active` column that is 1 for
// non-terminal rows and NULL otherwise.  A composite unique key over
// (kind, facility_id, slot_date, start_time, end_time, active) makes
// the facility check-then-insert race lose at the constraint even if a
// caller ever bypasses the row lock: NULLs never collide, so terminal
// rows drop out of the constraint automatically.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingRecord mirrors the schema of the bookings table.  It is used
// by the repository when constructing or scanning rows; business logic
// should reason in terms of model.Booking semantics.
type BookingRecord struct {
	ID          uint64
	UserID      uint64
	Kind        model.BookingKind
	FacilityID  *uint64
	EventSlotID *uint64
	CoachID     *uint64
	SlotDate    *string // "2006-01-02"; nil for event bookings
	StartTime   *string // "HH:MM"; nil for event bookings
	EndTime     *string // "HH:MM"; nil for event bookings
	Quantity    uint32
	AmountPaise uint32
	Status      model.BookingStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const bookingCols = `id, user_id, kind, facility_id, event_slot_id, coach_id,
	   DATE_FORMAT(slot_date, '%Y-%m-%d'), TIME_FORMAT(start_time, '%H:%i'), TIME_FORMAT(end_time, '%H:%i'),
	   quantity, amount_paise, status, expires_at, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (BookingRecord, error) {
	var b BookingRecord
	var facilityID, slotID, coachID sql.NullInt64
	var slotDate, startTime, endTime sql.NullString
	err := row.Scan(&b.ID, &b.UserID, &b.Kind, &facilityID, &slotID, &coachID,
		&slotDate, &startTime, &endTime,
		&b.Quantity, &b.AmountPaise, &b.Status, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return BookingRecord{}, err
	}
	if facilityID.Valid {
		v := uint64(facilityID.Int64)
		b.FacilityID = &v
	}
	if slotID.Valid {
		v := uint64(slotID.Int64)
		b.EventSlotID = &v
	}
	if coachID.Valid {
		v := uint64(coachID.Int64)
		b.CoachID = &v
	}
	if slotDate.Valid {
		v := slotDate.String
		b.SlotDate = &v
	}
	if startTime.Valid {
		v := startTime.String
		b.StartTime = &v
	}
	if endTime.Valid {
		v := endTime.String
		b.EndTime = &v
	}
	return b, nil
}

// CreateTx inserts a new PENDING booking within the given transaction
// and populates the generated fields on the provided record.  The row
// is inserted with active=1 so it immediately holds capacity; a
// duplicate-key failure means a concurrent claim won the same facility
// tuple and is surfaced as ErrNotAvailable.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *BookingRecord) error {
	const q = `INSERT INTO bookings
		(user_id, kind, facility_id, event_slot_id, coach_id, slot_date, start_time, end_time, quantity, amount_paise, status, active, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'PENDING', 1, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.UserID, b.Kind, b.FacilityID, b.EventSlotID, b.CoachID,
		b.SlotDate, b.StartTime, b.EndTime, b.Quantity, b.AmountPaise,
		b.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrNotAvailable
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	got, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, b.ID))
	if err != nil {
		return err
	}
	*b = got
	return nil
}

// GetByID returns a booking without locking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (BookingRecord, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id))
}

// GetForUpdateTx loads a booking under a row lock.  Status transitions
// and the payment verify commit read through this method so two
// deliveries of the same callback serialize on the booking row.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (BookingRecord, error) {
	return scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingCols+` FROM bookings WHERE id = ? FOR UPDATE`, id))
}

// FacilityTupleTakenTx reports whether a non-terminal booking already
// claims the exact (facility, date, start, end) tuple.  Callers must
// hold the facility row lock; the unique key is the backstop, this
// check exists to fail fast with a clean error.
func (r *BookingRepo) FacilityTupleTakenTx(ctx context.Context, tx *sql.Tx, facilityID uint64, date, start, end string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		  WHERE kind = 'FACILITY' AND facility_id = ? AND slot_date = ? AND start_time = ? AND end_time = ? AND active = 1`,
		facilityID, date, start, end).Scan(&n)
	return n > 0, err
}

// UserSeatCountTx sums the seats a user already holds for an event
// slot across pending, confirmed and completed bookings.  The per-user
// ticket cap is enforced against this cumulative figure.
func (r *BookingRepo) UserSeatCountTx(ctx context.Context, tx *sql.Tx, userID, slotID uint64) (uint32, error) {
	var n uint32
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM bookings
		  WHERE user_id = ? AND event_slot_id = ? AND status IN ('PENDING','CONFIRMED','COMPLETED')`,
		userID, slotID).Scan(&n)
	return n, err
}

// CoachOverlapExistsTx reports whether the user already holds a
// non-terminal coach booking overlapping the given window on the same
// date with the same coach.
func (r *BookingRepo) CoachOverlapExistsTx(ctx context.Context, tx *sql.Tx, userID, coachID uint64, date, start, end string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings
		  WHERE kind = 'COACH' AND user_id = ? AND coach_id = ? AND slot_date = ? AND active = 1
			AND NOT (end_time <= ? OR start_time >= ?)`,
		userID, coachID, date, start, end).Scan(&n)
	return n > 0, err
}

// SetStatusTx moves a booking to a new status.  Terminal statuses
// clear the `active` key so the row leaves the unique constraint and
// the availability queries in one statement.  The caller is
// responsible for having validated the transition and for releasing
// event seats when booking.ReleasesCapacity says so.
func (r *BookingRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.BookingStatus) error {
	active := sql.NullInt64{Int64: 1, Valid: true}
	if booking.IsTerminal(status) {
		active = sql.NullInt64{}
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, active = ? WHERE id = ?`,
		status, active, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		// reactivating a terminal booking collides with a newer claim on
		// the same facility tuple
		return ErrNotAvailable
	}
	return err
}

// ExtendHoldTx pushes a pending booking's expiry forward.  Used when a
// payment order is created so the hold survives the checkout redirect.
func (r *BookingRepo) ExtendHoldTx(ctx context.Context, tx *sql.Tx, id uint64, until time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET expires_at = ? WHERE id = ? AND status = 'PENDING'`,
		until.UTC().Format("2006-01-02 15:04:05"), id)
	return err
}

// ExpiredPendingTx returns pending bookings whose hold has lapsed,
// locked for update so the sweeper and a racing payment verify cannot
// both act on the same row.  The batch is bounded to keep sweep
// transactions short.
func (r *BookingRepo) ExpiredPendingTx(ctx context.Context, tx *sql.Tx, limit int) ([]BookingRecord, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+bookingCols+` FROM bookings
		  WHERE status = 'PENDING' AND expires_at <= UTC_TIMESTAMP()
		  ORDER BY expires_at
		  LIMIT ? FOR UPDATE`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BookingRecord
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// BookingDetail is the listing shape returned to clients: the booking
// joined with the display name of whatever resource it claims.
type BookingDetail struct {
	ID           uint64            `json:"id"`
	Kind         model.BookingKind `json:"kind"`
	ResourceName string            `json:"resource_name"`
	SlotDate     *string           `json:"slot_date,omitempty"`
	StartTime    *string           `json:"start_time,omitempty"`
	EndTime      *string           `json:"end_time,omitempty"`
	SlotStartsAt *string           `json:"slot_starts_at,omitempty"`
	Quantity     uint32            `json:"quantity"`
	AmountPaise  uint32            `json:"amount_paise"`
	Status       string            `json:"status"`
	UserID       uint64            `json:"user_id,omitempty"`
	CreatedAt    string            `json:"created_at"`
}

const bookingDetailQuery = `SELECT b.id, b.kind,
		   COALESCE(f.name, e.title, c.name, ''),
		   DATE_FORMAT(b.slot_date, '%Y-%m-%d'), TIME_FORMAT(b.start_time, '%H:%i'), TIME_FORMAT(b.end_time, '%H:%i'),
		   es.starts_at,
		   b.quantity, b.amount_paise, b.status, b.user_id, b.created_at
	  FROM bookings b
	  LEFT JOIN facilities f ON f.id = b.facility_id
	  LEFT JOIN event_slots es ON es.id = b.event_slot_id
	  LEFT JOIN events e ON e.id = es.event_id
	  LEFT JOIN coaches c ON c.id = b.coach_id`

func scanBookingDetail(rows *sql.Rows) (BookingDetail, error) {
	var d BookingDetail
	var slotDate, startTime, endTime sql.NullString
	var slotStartsAt sql.NullTime
	var createdAt time.Time
	if err := rows.Scan(&d.ID, &d.Kind, &d.ResourceName,
		&slotDate, &startTime, &endTime, &slotStartsAt,
		&d.Quantity, &d.AmountPaise, &d.Status, &d.UserID, &createdAt); err != nil {
		return BookingDetail{}, err
	}
	if slotDate.Valid {
		v := slotDate.String
		d.SlotDate = &v
	}
	if startTime.Valid {
		v := startTime.String
		d.StartTime = &v
	}
	if endTime.Valid {
		v := endTime.String
		d.EndTime = &v
	}
	if slotStartsAt.Valid {
		iso := slotStartsAt.Time.UTC().Format(time.RFC3339)
		d.SlotStartsAt = &iso
	}
	d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return d, nil
}

// ListByUser returns all bookings of one user, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingDetailQuery+` WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		d.UserID = 0 // owner listing does not repeat the caller's id
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListPendingFacility returns pending facility bookings for the admin
// approval queue, oldest first.
func (r *BookingRepo) ListPendingFacility(ctx context.Context) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		bookingDetailQuery+` WHERE b.kind = 'FACILITY' AND b.status = 'PENDING' ORDER BY b.created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TakenFacilityWindows returns the (start, end) pairs claimed by
// non-terminal bookings for a facility on one date.  The availability
// endpoint derives free windows from this list; it requires no lock.
func (r *BookingRepo) TakenFacilityWindows(ctx context.Context, facilityID uint64, date string) ([][2]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT TIME_FORMAT(start_time, '%H:%i'), TIME_FORMAT(end_time, '%H:%i')
		   FROM bookings
		  WHERE kind = 'FACILITY' AND facility_id = ? AND slot_date = ? AND active = 1
		  ORDER BY start_time`,
		facilityID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([][2]string, 0)
	for rows.Next() {
		var s, e string
		if err := rows.Scan(&s, &e); err != nil {
			return nil, err
		}
		out = append(out, [2]string{s, e})
	}
	return out, rows.Err()
}
