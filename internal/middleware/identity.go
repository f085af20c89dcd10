package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// ActorID returns the authenticated account id stored by JWTAuth.
func ActorID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// ActorRole returns the authenticated role stored by JWTAuth.
func ActorRole(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// currentUserID is the rate-limit key component for the caller, "anon" when
// unauthenticated.
func currentUserID(c echo.Context) string {
	if id, ok := ActorID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
