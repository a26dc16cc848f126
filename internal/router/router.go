package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/sporthub/sporthub-api/internal/handler"
	"github.com/sporthub/sporthub-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; the protected /v1/me
// endpoint demonstrates the middleware chain.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// refresh rotates the refresh token; refresh-access only mints a new
	// access token
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// logout accepts either a bearer token (all sessions) or a
	// refresh_token body (single session), so it needs no middleware
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog endpoints.  The
// caching middleware is applied per group so authenticated routes are
// never cached.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, m *handler.MembershipHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/facilities", b.ListFacilities)
	g.GET("/facilities/:id/availability", b.FacilityAvailability)
	g.GET("/events", b.ListEvents)
	g.GET("/events/:id/slots", b.ListEventSlots)
	g.GET("/coaches", b.ListCoaches)
	g.GET("/plans", m.ListPlans)
}

// RegisterBookings registers the booking, payment and membership
// endpoints.  All of them require a valid JWT; ownership checks happen
// in the handlers so admins can act on any booking.
func RegisterBookings(e *echo.Echo, bk *handler.BookingHandler, pay *handler.PaymentHandler, mem *handler.MembershipHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("USER", "ADMIN"),
	)
	g.POST("/bookings/facility", bk.CreateFacilityBooking)
	g.POST("/bookings/event", bk.CreateEventBooking)
	g.POST("/bookings/coach", bk.CreateCoachBooking)
	g.GET("/bookings/:id", bk.GetBooking)
	g.DELETE("/bookings/:id", bk.CancelBooking)
	g.GET("/my-bookings", bk.ListMyBookings)

	g.POST("/payments/order", pay.CreateOrder)
	g.POST("/payments/verify", pay.Verify)
	g.POST("/payments/failed", pay.ReportFailure)
	g.GET("/my-payments", pay.ListMyPayments)

	g.POST("/memberships", mem.Subscribe)
	g.GET("/my-membership", mem.MyMembership)
	g.GET("/my-memberships", mem.ListMyMemberships)
}

// RegisterAdmin registers the admin surface: the facility approval
// queue and catalog management.  Every route requires the ADMIN role.
func RegisterAdmin(e *echo.Echo, ab *handler.AdminBookingHandler, ac *handler.AdminCatalogHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.GET("/bookings/pending", ab.ListPending)
	g.POST("/bookings/:id/approve", ab.Approve)
	g.POST("/bookings/:id/reject", ab.Reject)

	g.POST("/facilities", ac.CreateFacility)
	g.PUT("/facilities/:id", ac.UpdateFacility)
	g.PATCH("/facilities/:id/status", ac.SetFacilityStatus)

	g.POST("/events", ac.CreateEvent)
	g.POST("/events/:id/slots", ac.CreateEventSlot)
	g.PATCH("/event-slots/:id/status", ac.SetEventSlotStatus)

	g.POST("/coaches", ac.CreateCoach)
	g.PATCH("/coaches/:id/active", ac.SetCoachActive)

	g.POST("/plans", ac.CreatePlan)
	g.PATCH("/plans/:id/active", ac.SetPlanActive)
}
