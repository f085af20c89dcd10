package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/middleware"
)

const defaultTimeout = 5 * time.Second

// requestCtx bounds the store round trips of one request.
func requestCtx(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(c.Request().Context(), d)
}

// actor returns the authenticated account id. Routes behind JWTAuth always
// have one; false means the handler was mounted without it.
func actor(c echo.Context) (uint64, bool) {
	return middleware.ActorID(c)
}
