package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/model"
	q "github.com/sporthub/sporthub-api/internal/queue"
	"github.com/sporthub/sporthub-api/internal/repository"
	queue_publisher "github.com/sporthub/sporthub-api/internal/service"
)

// AdminBookingHandler covers the facility approval queue.  Facility
// bookings pass through an admin decision: approve confirms the booking
// without touching capacity (the unique active key already holds the
// slot), reject releases it.
type AdminBookingHandler struct {
	Bookings *repository.BookingRepo
	Events   *repository.EventRepo
}

// NewAdminBookingHandler constructs an AdminBookingHandler.
func NewAdminBookingHandler(b *repository.BookingRepo, e *repository.EventRepo) *AdminBookingHandler {
	if b == nil || e == nil {
		panic("nil repository passed to NewAdminBookingHandler")
	}
	return &AdminBookingHandler{Bookings: b, Events: e}
}

// ListPending handles GET /v1/admin/bookings/pending: the facility
// approval queue, oldest first.
func (h *AdminBookingHandler) ListPending(c echo.Context) error {
	items, err := h.Bookings.ListPendingFacility(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load pending bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Approve handles POST /v1/admin/bookings/:id/approve.  Only facility
// bookings take this path; event and coach bookings confirm through
// payment alone.
func (h *AdminBookingHandler) Approve(c echo.Context) error {
	return h.decide(c, model.BookingConfirmed)
}

// Reject handles POST /v1/admin/bookings/:id/reject.  The slot is
// released in the same transaction.
func (h *AdminBookingHandler) Reject(c echo.Context) error {
	return h.decide(c, model.BookingRejected)
}

func (h *AdminBookingHandler) decide(c echo.Context, to model.BookingStatus) error {
	bookingID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	rec, err := h.Bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if rec.Kind != model.KindFacility {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only facility bookings require approval"})
	}
	if !booking.CanTransition(rec.Status, to) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
	}
	if to == model.BookingRejected {
		err = h.Bookings.ReleaseTx(ctx, tx, h.Events, rec, to)
	} else {
		err = h.Bookings.SetStatusTx(ctx, tx, rec.ID, to)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	if to == model.BookingConfirmed {
		ev := q.BookingConfirmedEvent{
			BookingID:   rec.ID,
			UserID:      rec.UserID,
			Kind:        string(rec.Kind),
			Quantity:    rec.Quantity,
			AmountPaise: rec.AmountPaise,
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if rec.SlotDate != nil {
			ev.SlotDate = *rec.SlotDate
		}
		if rec.StartTime != nil {
			ev.StartTime = *rec.StartTime
		}
		if rec.EndTime != nil {
			ev.EndTime = *rec.EndTime
		}
		go func() {
			_ = queue_publisher.PublishBookingConfirmed(context.Background(), ev)
		}()
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id": rec.ID,
		"status":     to,
	})
}
