package router

import (
	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/handler"
	"github.com/festopiya/stall-booking/internal/middleware"
	"github.com/festopiya/stall-booking/internal/model"
)

// RegisterVendor registers VENDOR-scoped endpoints under /v1/vendor. All
// routes require a valid JWT and the VENDOR role.
func RegisterVendor(e *echo.Echo, events *handler.EventHandler, bookings *handler.BookingHandler, profiles *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1/vendor",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleVendor),
	)

	// ---- Marketplace ----
	g.GET("/events", events.Marketplace)
	g.POST("/events/:id/offers", bookings.CreateOffer)

	// ---- Requests ----
	g.GET("/bookings", bookings.VendorBookings)
	g.GET("/bookings/:id/payment-link", bookings.PaymentLink)

	// ---- Profile ----
	g.GET("/profile", profiles.Get)
	g.PUT("/profile", profiles.Put)
}
