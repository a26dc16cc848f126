package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/repository"
)

// BrowseHandler serves the unauthenticated catalog: facilities with
// their availability, events with per-slot seat counts, and coaches.
// These routes sit behind the Redis response cache; none of them lock
// rows or start transactions.
type BrowseHandler struct {
	Facilities *repository.FacilityRepo
	Events     *repository.EventRepo
	Coaches    *repository.CoachRepo
	Bookings   *repository.BookingRepo
}

// NewBrowseHandler constructs a BrowseHandler.
func NewBrowseHandler(f *repository.FacilityRepo, e *repository.EventRepo, co *repository.CoachRepo, b *repository.BookingRepo) *BrowseHandler {
	if f == nil || e == nil || co == nil || b == nil {
		panic("nil repository passed to NewBrowseHandler")
	}
	return &BrowseHandler{Facilities: f, Events: e, Coaches: co, Bookings: b}
}

// ListFacilities handles GET /v1/facilities.
func (h *BrowseHandler) ListFacilities(c echo.Context) error {
	facs, err := h.Facilities.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facilities"})
	}
	items := make([]echo.Map, 0, len(facs))
	for _, f := range facs {
		item := echo.Map{
			"id":                   f.ID,
			"name":                 f.Name,
			"sport":                f.Sport,
			"price_per_hour_paise": f.PricePerHourPaise,
			"open_time":            f.OpenTime,
			"close_time":           f.CloseTime,
		}
		if f.Description != nil {
			item["description"] = *f.Description
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// FacilityAvailability handles GET /v1/facilities/:id/availability?date=.
// It returns the windows already taken by non-terminal bookings for the
// requested date; clients derive free windows from the gaps and the
// facility's opening hours.
func (h *BrowseHandler) FacilityAvailability(c echo.Context) error {
	facilityID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	date := c.QueryParam("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	ctx := c.Request().Context()
	fac, err := h.Facilities.GetByID(ctx, facilityID)
	if err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load facility"})
	}
	windows, err := h.Bookings.TakenFacilityWindows(ctx, facilityID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load availability"})
	}
	taken := make([]echo.Map, 0, len(windows))
	for _, w := range windows {
		taken = append(taken, echo.Map{"start_time": w[0], "end_time": w[1]})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"facility_id": fac.ID,
		"date":        date,
		"open_time":   fac.OpenTime,
		"close_time":  fac.CloseTime,
		"taken":       taken,
	})
}

// ListEvents handles GET /v1/events.
func (h *BrowseHandler) ListEvents(c echo.Context) error {
	events, err := h.Events.ListEvents(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	items := make([]echo.Map, 0, len(events))
	for _, e := range events {
		item := echo.Map{
			"id":    e.ID,
			"title": e.Title,
			"venue": e.Venue,
		}
		if e.Description != nil {
			item["description"] = *e.Description
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListEventSlots handles GET /v1/events/:id/slots.  Each slot carries
// seats_left and a sold_out flag so clients never do seat arithmetic.
func (h *BrowseHandler) ListEventSlots(c echo.Context) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	slots, err := h.Events.ListSlots(c.Request().Context(), eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load slots"})
	}
	items := make([]echo.Map, 0, len(slots))
	for _, s := range slots {
		seatsLeft := uint32(0)
		if s.TotalSeats > s.BookedSeats {
			seatsLeft = s.TotalSeats - s.BookedSeats
		}
		items = append(items, echo.Map{
			"id":                   s.ID,
			"starts_at":            s.StartsAt.UTC().Format(time.RFC3339),
			"ends_at":              s.EndsAt.UTC().Format(time.RFC3339),
			"price_per_seat_paise": s.PricePerSeatPaise,
			"total_seats":          s.TotalSeats,
			"seats_left":           seatsLeft,
			"sold_out":             s.Status == model.SlotSoldOut,
			"status":               s.Status,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListCoaches handles GET /v1/coaches.
func (h *BrowseHandler) ListCoaches(c echo.Context) error {
	coaches, err := h.Coaches.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load coaches"})
	}
	items := make([]echo.Map, 0, len(coaches))
	for _, co := range coaches {
		item := echo.Map{
			"id":                co.ID,
			"name":              co.Name,
			"sport":             co.Sport,
			"hourly_rate_paise": co.HourlyRatePaise,
		}
		if co.Bio != nil {
			item["bio"] = *co.Bio
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
