package handler

// This file defines the HTTP handlers that drive the booking negotiation.
// Vendors place offers and fetch payment links for approved bookings;
// organizers approve or decline offers on their own events. The acting
// account always comes from the access token, and every rule about who may
// do what lives in the booking service, not here.

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/model"
	"github.com/festopiya/stall-booking/internal/payment"
	"github.com/festopiya/stall-booking/internal/service"
)

// BookingHandler exposes the booking engine over HTTP. Actor ids always come
// from the access token.
type BookingHandler struct {
	Svc     *service.BookingService
	Payee   payment.Payee
	Timeout time.Duration
}

func NewBookingHandler(svc *service.BookingService, payee payment.Payee, timeout time.Duration) *BookingHandler {
	return &BookingHandler{Svc: svc, Payee: payee, Timeout: timeout}
}

type offerReq struct {
	AmountPaise int64 `json:"amount_paise"`
}

// CreateOffer handles POST /v1/vendor/events/:id/offers.
func (h *BookingHandler) CreateOffer(c echo.Context) error {
	vendorID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	var req offerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()
	b, err := h.Svc.CreateOffer(ctx, vendorID, c.Param("id"), req.AmountPaise)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Approve handles POST /v1/organizer/bookings/:id/approve.
func (h *BookingHandler) Approve(c echo.Context) error {
	return h.decide(c, model.StatusApproved)
}

// Decline handles POST /v1/organizer/bookings/:id/decline.
func (h *BookingHandler) Decline(c echo.Context) error {
	return h.decide(c, model.StatusDeclined)
}

func (h *BookingHandler) decide(c echo.Context, next model.Status) error {
	organizerID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	b, err := h.Svc.TransitionStatus(ctx, c.Param("id"), organizerID, next)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// OrganizerBookings handles GET /v1/organizer/bookings.
func (h *BookingHandler) OrganizerBookings(c echo.Context) error {
	organizerID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	summary, err := h.Svc.OrganizerBookings(ctx, organizerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// VendorBookings handles GET /v1/vendor/bookings.
func (h *BookingHandler) VendorBookings(c echo.Context) error {
	vendorID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	summary, err := h.Svc.VendorBookings(ctx, vendorID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// PaymentLink handles GET /v1/vendor/bookings/:id/payment-link.
func (h *BookingHandler) PaymentLink(c echo.Context) error {
	vendorID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	intent, err := h.Svc.PaymentIntent(ctx, vendorID, c.Param("id"), h.Payee)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, intent)
}
