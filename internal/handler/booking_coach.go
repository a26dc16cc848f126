package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/repository"
)

// CreateCoachBooking handles POST /v1/bookings/coach.  A coach session
// is exclusive per user against overlapping windows with the same coach
// on the same date.  The session price is the coach's hourly rate
// prorated by the window, minus the discount of the user's active
// membership tier.
func (h *BookingHandler) CreateCoachBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		CoachID   uint64 `json:"coach_id"`
		Date      string `json:"date"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.CoachID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "coach_id is required"})
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if _, err := booking.WindowMinutes(body.StartTime, body.EndTime); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()

	// The membership discount is a read-only lookup; no active
	// membership means full rate.
	discount := uint32(0)
	if mp, err := h.Memberships.ActiveForUser(ctx, userID); err == nil {
		discount = mp.Plan.CoachDiscountPct
	} else if !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load membership"})
	}

	tx, err := h.Coaches.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	coach, err := h.Coaches.GetForUpdateTx(ctx, tx, body.CoachID)
	if err != nil {
		if err == repository.ErrCoachNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coach not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load coach"})
	}
	if !coach.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "coach is not accepting bookings"})
	}

	overlap, err := h.Bookings.CoachOverlapExistsTx(ctx, tx, userID, coach.ID, body.Date, body.StartTime, body.EndTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check overlap"})
	}
	if overlap {
		return c.JSON(http.StatusConflict, echo.Map{"error": "overlapping session with this coach"})
	}

	amount, err := booking.CoachAmount(coach.HourlyRatePaise, body.StartTime, body.EndTime, discount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rec := repository.BookingRecord{
		UserID:      userID,
		Kind:        model.KindCoach,
		CoachID:     &coach.ID,
		SlotDate:    &body.Date,
		StartTime:   &body.StartTime,
		EndTime:     &body.EndTime,
		Quantity:    1,
		AmountPaise: amount,
		ExpiresAt:   time.Now().UTC().Add(h.Cfg.HoldTTL),
	}
	if err := h.Bookings.CreateTx(ctx, tx, &rec); err != nil {
		if err == repository.ErrNotAvailable {
			return c.JSON(http.StatusConflict, echo.Map{"error": "session not available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, bookingResponse(rec))
}
