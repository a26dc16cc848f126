package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/repository"
)

// CreateEventBooking handles POST /v1/bookings/event.  Event capacity
// is counted seats on the slot row.  The handler locks the slot, checks
// the per-user ticket cap against the user's cumulative seats for the
// slot, consumes seats with the guarded UPDATE and inserts a PENDING
// booking.  The slot flips to SOLD_OUT in the same statement that takes
// the last seat.
func (h *BookingHandler) CreateEventBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		EventSlotID uint64 `json:"event_slot_id"`
		Quantity    uint32 `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.EventSlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_slot_id is required"})
	}
	if body.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}

	ctx := c.Request().Context()
	tx, err := h.Events.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := h.Events.GetSlotForUpdateTx(ctx, tx, body.EventSlotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event slot"})
	}
	if slot.Status == model.SlotDisabled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event slot is not open for booking"})
	}

	already, err := h.Bookings.UserSeatCountTx(ctx, tx, userID, slot.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check seat count"})
	}
	seatsLeft := uint32(0)
	if slot.TotalSeats > slot.BookedSeats {
		seatsLeft = slot.TotalSeats - slot.BookedSeats
	}
	if err := booking.ValidateQuantity(body.Quantity, already, seatsLeft); err != nil {
		var limitErr *booking.LimitExceededError
		if errors.As(err, &limitErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": limitErr.Error()})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats available"})
	}

	if err := h.Events.TakeSeatsTx(ctx, tx, slot.ID, body.Quantity); err != nil {
		if err == repository.ErrNotAvailable {
			return c.JSON(http.StatusConflict, echo.Map{"error": "not enough seats available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to take seats"})
	}

	rec := repository.BookingRecord{
		UserID:      userID,
		Kind:        model.KindEvent,
		EventSlotID: &slot.ID,
		Quantity:    body.Quantity,
		AmountPaise: booking.EventAmount(slot.PricePerSeatPaise, body.Quantity),
		ExpiresAt:   time.Now().UTC().Add(h.Cfg.HoldTTL),
	}
	if err := h.Bookings.CreateTx(ctx, tx, &rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, bookingResponse(rec))
}
