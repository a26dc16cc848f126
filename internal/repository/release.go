package repository

import (
	"context"
	"database/sql"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/model"
)

// ReleaseTx moves a booking to a terminal status and gives back whatever
// capacity it held.  For facility and coach bookings clearing the
// `active` key is the whole release; event bookings additionally return
// their seats to the slot, which reopens a SOLD_OUT slot.  Callers pass
// the booking as loaded under its row lock.
//
// The method is idempotent with respect to capacity: a booking already
// in a terminal status holds nothing, so the caller should validate the
// transition with booking.CanTransition before calling.
func (r *BookingRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, events *EventRepo, b BookingRecord, to model.BookingStatus) error {
	if err := r.SetStatusTx(ctx, tx, b.ID, to); err != nil {
		return err
	}
	if booking.ReleasesCapacity(b.Status, to) && b.Kind == model.KindEvent && b.EventSlotID != nil {
		return events.ReleaseSeatsTx(ctx, tx, *b.EventSlotID, b.Quantity)
	}
	return nil
}
