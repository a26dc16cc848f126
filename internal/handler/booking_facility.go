package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/repository"
)

// CreateFacilityBooking handles POST /v1/bookings/facility.  A facility
// slot is exclusive per (facility, date, start, end) tuple.  The
// handler locks the facility row, checks the tuple is free and inserts
// a PENDING booking whose `active` unique key holds the slot until
// payment or expiry.  A concurrent claim on the same tuple either waits
// on the lock and sees the tuple taken, or loses at the unique key.
func (h *BookingHandler) CreateFacilityBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		FacilityID uint64 `json:"facility_id"`
		Date       string `json:"date"`
		StartTime  string `json:"start_time"`
		EndTime    string `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.FacilityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "facility_id is required"})
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	// Window validity (and midnight wrap) is decided by duration
	// arithmetic; the same call prices the window later.
	if _, err := booking.WindowMinutes(body.StartTime, body.EndTime); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	tx, err := h.Facilities.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	fac, err := h.Facilities.GetForUpdateTx(ctx, tx, body.FacilityID)
	if err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facility"})
	}
	if fac.Status != model.FacilityOpen {
		return c.JSON(http.StatusConflict, echo.Map{"error": "facility is not open for booking"})
	}
	if !withinOpenHours(fac.OpenTime, fac.CloseTime, body.StartTime, body.EndTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "window outside facility opening hours"})
	}

	taken, err := h.Bookings.FacilityTupleTakenTx(ctx, tx, fac.ID, body.Date, body.StartTime, body.EndTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot not available"})
	}

	amount, err := booking.FacilityAmount(fac.PricePerHourPaise, body.StartTime, body.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rec := repository.BookingRecord{
		UserID:      userID,
		Kind:        model.KindFacility,
		FacilityID:  &fac.ID,
		SlotDate:    &body.Date,
		StartTime:   &body.StartTime,
		EndTime:     &body.EndTime,
		Quantity:    1,
		AmountPaise: amount,
		ExpiresAt:   time.Now().UTC().Add(h.Cfg.HoldTTL),
	}
	if err := h.Bookings.CreateTx(ctx, tx, &rec); err != nil {
		if err == repository.ErrNotAvailable {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot not available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, bookingResponse(rec))
}

// withinOpenHours reports whether a requested window fits the
// facility's daily opening hours.  A facility whose close time is at or
// before its open time operates across midnight, in which case the
// window only needs to start inside the operating span.
func withinOpenHours(open, close, start, end string) bool {
	o, err := booking.ParseTimeOfDay(open)
	if err != nil {
		return false
	}
	cl, err := booking.ParseTimeOfDay(close)
	if err != nil {
		return false
	}
	s, err := booking.ParseTimeOfDay(start)
	if err != nil {
		return false
	}
	e, err := booking.ParseTimeOfDay(end)
	if err != nil {
		return false
	}
	if cl > o {
		// daytime facility: the whole window must sit inside [open, close]
		return s >= o && e > s && e <= cl
	}
	// overnight facility (e.g. 18:00–02:00): start must fall inside the
	// operating span; window length is already bounded by pricing
	return s >= o || s < cl
}
