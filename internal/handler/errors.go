package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/service"
)

// statusByKind maps service failure kinds onto HTTP statuses.
var statusByKind = map[service.Kind]int{
	service.KindValidation:        http.StatusBadRequest,
	service.KindDuplicateOffer:    http.StatusConflict,
	service.KindForbidden:         http.StatusForbidden,
	service.KindInvalidTransition: http.StatusConflict,
	service.KindNotFound:          http.StatusNotFound,
	service.KindUnavailable:       http.StatusServiceUnavailable,
}

// fail writes err as {"error": kind, "message": detail}. Anything that is not
// a service error is logged and reported as a 500.
func fail(c echo.Context, err error) error {
	var se *service.Error
	if errors.As(err, &se) {
		status, ok := statusByKind[se.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		if se.Kind == service.KindUnavailable {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		}
		return c.JSON(status, echo.Map{"error": string(se.Kind), "message": se.Detail})
	}
	log.Printf("%s %s: unexpected error: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "unexpected error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": string(service.KindValidation), "message": msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": string(service.KindNotFound), "message": msg})
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": msg})
}

// unavailable reports a store failure outside the booking service.
func unavailable(c echo.Context, op string, err error) error {
	c.Logger().Errorf("%s %s: %s: %v", c.Request().Method, c.Path(), op, err)
	return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": string(service.KindUnavailable), "message": op + " failed"})
}
