package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/booking"
	"github.com/sporthub/sporthub-api/internal/model"
	"github.com/sporthub/sporthub-api/internal/repository"
)

// AdminCatalogHandler manages the bookable inventory: facilities,
// events with their slots, coaches and membership plans.  Disabling a
// resource stops new bookings; existing bookings are untouched.
type AdminCatalogHandler struct {
	Facilities  *repository.FacilityRepo
	Events      *repository.EventRepo
	Coaches     *repository.CoachRepo
	Memberships *repository.MembershipRepo
}

// NewAdminCatalogHandler constructs an AdminCatalogHandler.
func NewAdminCatalogHandler(f *repository.FacilityRepo, e *repository.EventRepo, co *repository.CoachRepo, m *repository.MembershipRepo) *AdminCatalogHandler {
	if f == nil || e == nil || co == nil || m == nil {
		panic("nil repository passed to NewAdminCatalogHandler")
	}
	return &AdminCatalogHandler{Facilities: f, Events: e, Coaches: co, Memberships: m}
}

// ----- facilities -----

type facilityReq struct {
	Name              string  `json:"name"`
	Sport             string  `json:"sport"`
	Description       *string `json:"description"`
	PricePerHourPaise uint32  `json:"price_per_hour_paise"`
	OpenTime          string  `json:"open_time"`
	CloseTime         string  `json:"close_time"`
}

func (r *facilityReq) validate() string {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Sport) == "" {
		return "name and sport are required"
	}
	if r.PricePerHourPaise == 0 {
		return "price_per_hour_paise must be positive"
	}
	if _, err := booking.ParseTimeOfDay(r.OpenTime); err != nil {
		return "invalid open_time, want HH:MM"
	}
	if _, err := booking.ParseTimeOfDay(r.CloseTime); err != nil {
		return "invalid close_time, want HH:MM"
	}
	return ""
}

// CreateFacility handles POST /v1/admin/facilities.
func (h *AdminCatalogHandler) CreateFacility(c echo.Context) error {
	var req facilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	f := model.Facility{
		Name:              strings.TrimSpace(req.Name),
		Sport:             strings.TrimSpace(req.Sport),
		Description:       req.Description,
		PricePerHourPaise: req.PricePerHourPaise,
		OpenTime:          req.OpenTime,
		CloseTime:         req.CloseTime,
	}
	if err := h.Facilities.Create(c.Request().Context(), &f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create facility"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": f.ID})
}

// UpdateFacility handles PUT /v1/admin/facilities/:id.
func (h *AdminCatalogHandler) UpdateFacility(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	var req facilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	f := model.Facility{
		ID:                id,
		Name:              strings.TrimSpace(req.Name),
		Sport:             strings.TrimSpace(req.Sport),
		Description:       req.Description,
		PricePerHourPaise: req.PricePerHourPaise,
		OpenTime:          req.OpenTime,
		CloseTime:         req.CloseTime,
	}
	if err := h.Facilities.Update(c.Request().Context(), f); err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update facility"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// SetFacilityStatus handles PATCH /v1/admin/facilities/:id/status with
// body {"status": "OPEN"|"DISABLED"}.
func (h *AdminCatalogHandler) SetFacilityStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.FacilityStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != model.FacilityOpen && status != model.FacilityDisabled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be OPEN or DISABLED"})
	}
	if err := h.Facilities.SetStatus(c.Request().Context(), id, status); err != nil {
		if err == repository.ErrFacilityNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update facility"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// ----- events and slots -----

// CreateEvent handles POST /v1/admin/events.
func (h *AdminCatalogHandler) CreateEvent(c echo.Context) error {
	var req struct {
		Title       string  `json:"title"`
		Venue       string  `json:"venue"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Venue) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and venue are required"})
	}
	e := model.Event{
		Title:       strings.TrimSpace(req.Title),
		Venue:       strings.TrimSpace(req.Venue),
		Description: req.Description,
	}
	if err := h.Events.CreateEvent(c.Request().Context(), &e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": e.ID})
}

// CreateEventSlot handles POST /v1/admin/events/:id/slots.
func (h *AdminCatalogHandler) CreateEventSlot(c echo.Context) error {
	eventID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req struct {
		StartsAt          string `json:"starts_at"`
		EndsAt            string `json:"ends_at"`
		PricePerSeatPaise uint32 `json:"price_per_seat_paise"`
		TotalSeats        uint32 `json:"total_seats"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid starts_at, want RFC3339"})
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ends_at, want RFC3339"})
	}
	if !endsAt.After(startsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}
	if req.TotalSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
	}
	s := model.EventSlot{
		EventID:           eventID,
		StartsAt:          startsAt,
		EndsAt:            endsAt,
		PricePerSeatPaise: req.PricePerSeatPaise,
		TotalSeats:        req.TotalSeats,
	}
	if err := h.Events.CreateSlot(c.Request().Context(), &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create slot"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": s.ID})
}

// SetEventSlotStatus handles PATCH /v1/admin/event-slots/:id/status.
// Only OPEN and DISABLED are accepted; SOLD_OUT is derived by the
// reservation protocol, never set by hand.
func (h *AdminCatalogHandler) SetEventSlotStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.EventSlotStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != model.SlotOpen && status != model.SlotDisabled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be OPEN or DISABLED"})
	}
	if err := h.Events.SetSlotStatus(c.Request().Context(), id, status); err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update slot"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// ----- coaches -----

// CreateCoach handles POST /v1/admin/coaches.
func (h *AdminCatalogHandler) CreateCoach(c echo.Context) error {
	var req struct {
		Name            string  `json:"name"`
		Sport           string  `json:"sport"`
		Bio             *string `json:"bio"`
		HourlyRatePaise uint32  `json:"hourly_rate_paise"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Sport) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and sport are required"})
	}
	if req.HourlyRatePaise == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hourly_rate_paise must be positive"})
	}
	co := model.Coach{
		Name:            strings.TrimSpace(req.Name),
		Sport:           strings.TrimSpace(req.Sport),
		Bio:             req.Bio,
		HourlyRatePaise: req.HourlyRatePaise,
	}
	if err := h.Coaches.Create(c.Request().Context(), &co); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create coach"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": co.ID})
}

// SetCoachActive handles PATCH /v1/admin/coaches/:id/active with body
// {"active": true|false}.
func (h *AdminCatalogHandler) SetCoachActive(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid coach id"})
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Coaches.SetActive(c.Request().Context(), id, req.Active); err != nil {
		if err == repository.ErrCoachNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "coach not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update coach"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": req.Active})
}

// ----- membership plans -----

// CreatePlan handles POST /v1/admin/plans.
func (h *AdminCatalogHandler) CreatePlan(c echo.Context) error {
	var req struct {
		Name             string `json:"name"`
		Tier             string `json:"tier"`
		PricePaise       uint32 `json:"price_paise"`
		DurationDays     uint32 `json:"duration_days"`
		CoachDiscountPct uint32 `json:"coach_discount_pct"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tier := model.MembershipTier(strings.ToUpper(strings.TrimSpace(req.Tier)))
	switch tier {
	case model.TierBasic, model.TierPro, model.TierElite:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tier must be BASIC, PRO or ELITE"})
	}
	if strings.TrimSpace(req.Name) == "" || req.PricePaise == 0 || req.DurationDays == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, price_paise and duration_days are required"})
	}
	if req.CoachDiscountPct > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "coach_discount_pct must be 0..100"})
	}
	if req.CoachDiscountPct == 0 {
		req.CoachDiscountPct = booking.DiscountForTier(tier)
	}
	p := model.MembershipPlan{
		Name:             strings.TrimSpace(req.Name),
		Tier:             tier,
		PricePaise:       req.PricePaise,
		DurationDays:     req.DurationDays,
		CoachDiscountPct: req.CoachDiscountPct,
	}
	if err := h.Memberships.CreatePlan(c.Request().Context(), &p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create plan"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": p.ID})
}

// SetPlanActive handles PATCH /v1/admin/plans/:id/active.
func (h *AdminCatalogHandler) SetPlanActive(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Memberships.SetPlanActive(c.Request().Context(), id, req.Active); err != nil {
		if err == repository.ErrPlanNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update plan"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": req.Active})
}
