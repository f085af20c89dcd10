// Package router registers the HTTP routes and their middleware.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/handler"
	"github.com/festopiya/stall-booking/internal/middleware"
	"github.com/festopiya/stall-booking/internal/model"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess)
	// logout accepts either a refresh token body or a bearer token, so it
	// sits outside the JWT group
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer, model.RoleVendor),
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest marketplace. cache fronts these routes
// only; every other response is per-actor.
func RegisterPublic(e *echo.Echo, h *handler.EventHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/events", cache)
	g.GET("", h.ListPublic)
	g.GET("/:id", h.GetPublic)
}
