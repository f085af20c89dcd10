package router

import (
	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/handler"
	"github.com/festopiya/stall-booking/internal/middleware"
	"github.com/festopiya/stall-booking/internal/model"
)

// RegisterOrganizer registers ORGANIZER-scoped endpoints under
// /v1/organizer. All routes require a valid JWT and the ORGANIZER role.
func RegisterOrganizer(e *echo.Echo, events *handler.EventHandler, bookings *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/organizer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer),
	)

	// ---- Events ----
	g.POST("/events", events.Create)
	g.GET("/events", events.ListMine)

	// ---- Booking hub ----
	g.GET("/bookings", bookings.OrganizerBookings)
	g.POST("/bookings/:id/approve", bookings.Approve)
	g.POST("/bookings/:id/decline", bookings.Decline)
}
