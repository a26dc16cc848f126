package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/config"
	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/repository"
)

// BookingHandler groups the repositories needed to create, cancel and
// list bookings across the three capacity models.  All methods assume
// JWT authentication has run; role checks beyond ownership are left to
// the router.  Capacity-moving operations run inside a transaction that
// locks the contended resource row first.
type BookingHandler struct {
	Cfg         config.Config
	Bookings    *repository.BookingRepo
	Facilities  *repository.FacilityRepo
	Events      *repository.EventRepo
	Coaches     *repository.CoachRepo
	Memberships *repository.MembershipRepo
}

// NewBookingHandler constructs a BookingHandler.  All repositories must
// be non-nil.
func NewBookingHandler(cfg config.Config, b *repository.BookingRepo, f *repository.FacilityRepo, e *repository.EventRepo, co *repository.CoachRepo, m *repository.MembershipRepo) *BookingHandler {
	if b == nil || f == nil || e == nil || co == nil || m == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Cfg: cfg, Bookings: b, Facilities: f, Events: e, Coaches: co, Memberships: m}
}

// bookingResponse shapes the booking creation reply shared by all three
// kinds.
func bookingResponse(b repository.BookingRecord) echo.Map {
	resp := echo.Map{
		"booking_id":   b.ID,
		"kind":         b.Kind,
		"quantity":     b.Quantity,
		"amount_paise": b.AmountPaise,
		"status":       b.Status,
		"expires_at":   b.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if b.SlotDate != nil {
		resp["slot_date"] = *b.SlotDate
	}
	if b.StartTime != nil {
		resp["start_time"] = *b.StartTime
	}
	if b.EndTime != nil {
		resp["end_time"] = *b.EndTime
	}
	return resp
}

// CancelBooking handles DELETE /v1/bookings/:id.  The owner or an admin
// may cancel a PENDING or CONFIRMED booking; capacity is released in
// the same transaction.  Cancelling a terminal booking returns 409.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
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
	if rec.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !booking.CanTransition(rec.Status, model.BookingCancelled) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be cancelled"})
	}
	if err := h.Bookings.ReleaseTx(ctx, tx, h.Events, rec, model.BookingCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.NoContent(http.StatusNoContent)
}

// ListMyBookings handles GET /v1/my-bookings.  It returns all bookings
// of the current user, newest first, with resource names resolved.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.  Owners see their own
// bookings; admins see any.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	rec, err := h.Bookings.GetByID(c.Request().Context(), bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if rec.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": bookingResponse(rec)})
}
