package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/repository"
)

// MembershipHandler exposes plan browsing and subscription purchase.
// A purchase creates a PENDING membership which is then paid through
// the same order/verify flow as bookings; activation happens in the
// payment verifier.
type MembershipHandler struct {
	Memberships *repository.MembershipRepo
}

// NewMembershipHandler constructs a MembershipHandler.
func NewMembershipHandler(m *repository.MembershipRepo) *MembershipHandler {
	if m == nil {
		panic("nil repository passed to NewMembershipHandler")
	}
	return &MembershipHandler{Memberships: m}
}

// ListPlans handles GET /v1/plans.  Only purchasable plans are shown.
func (h *MembershipHandler) ListPlans(c echo.Context) error {
	plans, err := h.Memberships.ListPlans(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load plans"})
	}
	items := make([]echo.Map, 0, len(plans))
	for _, p := range plans {
		items = append(items, echo.Map{
			"id":                 p.ID,
			"name":               p.Name,
			"tier":               p.Tier,
			"price_paise":        p.PricePaise,
			"duration_days":      p.DurationDays,
			"coach_discount_pct": p.CoachDiscountPct,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Subscribe handles POST /v1/memberships.  It creates a PENDING
// membership for the chosen plan; the client then opens a payment order
// for it.  Users may hold several pending memberships, but only the
// one whose payment verifies first becomes active.
func (h *MembershipHandler) Subscribe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		PlanID uint64 `json:"plan_id"`
	}
	if err := c.Bind(&body); err != nil || body.PlanID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plan_id is required"})
	}
	ctx := c.Request().Context()

	plan, err := h.Memberships.GetPlanByID(ctx, body.PlanID)
	if err != nil {
		if err == repository.ErrPlanNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load plan"})
	}
	if !plan.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "plan is not available"})
	}

	tx, err := h.Memberships.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	m, err := h.Memberships.CreatePendingTx(ctx, tx, userID, plan.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create membership"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{
		"membership_id": m.ID,
		"plan_id":       plan.ID,
		"tier":          plan.Tier,
		"price_paise":   plan.PricePaise,
		"status":        m.Status,
	})
}

// MyMembership handles GET /v1/my-membership.  It returns the user's
// active membership with plan details, or 404 when none is active.
func (h *MembershipHandler) MyMembership(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	mp, err := h.Memberships.ActiveForUser(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active membership"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load membership"})
	}
	resp := echo.Map{
		"membership_id":      mp.Membership.ID,
		"plan":               mp.Plan.Name,
		"tier":               mp.Plan.Tier,
		"coach_discount_pct": mp.Plan.CoachDiscountPct,
		"status":             mp.Membership.Status,
	}
	if mp.Membership.StartsOn != nil {
		resp["starts_on"] = mp.Membership.StartsOn.UTC().Format("2006-01-02")
	}
	if mp.Membership.EndsOn != nil {
		resp["ends_on"] = mp.Membership.EndsOn.UTC().Format("2006-01-02")
	}
	return c.JSON(http.StatusOK, resp)
}

// ListMyMemberships handles GET /v1/my-memberships: the full history
// including pending and expired entries.
func (h *MembershipHandler) ListMyMemberships(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ms, err := h.Memberships.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load memberships"})
	}
	items := make([]echo.Map, 0, len(ms))
	for _, m := range ms {
		item := echo.Map{
			"membership_id": m.ID,
			"plan_id":       m.PlanID,
			"status":        m.Status,
			"created_at":    m.CreatedAt.UTC().Format(time.RFC3339),
		}
		if m.StartsOn != nil {
			item["starts_on"] = m.StartsOn.UTC().Format("2006-01-02")
		}
		if m.EndsOn != nil {
			item["ends_on"] = m.EndsOn.UTC().Format("2006-01-02")
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
