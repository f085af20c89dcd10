// This file defines handlers for the event catalog. Guests browse and search
// events without signing in, organizers list and create their own events,
// and vendors see the same catalog marked with the events they have already
// applied to.

package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/festopiya/stall-booking/internal/model"
	"github.com/festopiya/stall-booking/internal/payment"
	"github.com/festopiya/stall-booking/internal/repository"
)

// EventHandler serves the event catalog: the public marketplace, the
// organizer's own events and the vendor's marketplace view.
type EventHandler struct {
	Events   *repository.EventRepo
	Bookings *repository.BookingRepo
	Timeout  time.Duration
}

func NewEventHandler(events *repository.EventRepo, bookings *repository.BookingRepo, timeout time.Duration) *EventHandler {
	return &EventHandler{Events: events, Bookings: bookings, Timeout: timeout}
}

type createEventReq struct {
	Name              string `json:"event_name"`
	Date              string `json:"event_date"` // YYYY-MM-DD or RFC 3339
	BaseStallFeePaise int64  `json:"base_stall_fee_paise"`
	ExpectedFootfall  *int64 `json:"expected_footfall"`
	ContactPhone      string `json:"contact_phone"`
}

// eventView adds a display fee to an event.
type eventView struct {
	model.Event
	BaseStallFee string `json:"base_stall_fee"`
}

// marketplaceEvent marks events the vendor already holds an active offer on.
type marketplaceEvent struct {
	eventView
	Applied bool `json:"applied"`
}

func viewOf(e model.Event) eventView {
	return eventView{Event: e, BaseStallFee: payment.FormatRupees(e.BaseStallFeePaise)}
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ListPublic handles GET /v1/events?q= and lists events newest first.
func (h *EventHandler) ListPublic(c echo.Context) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	events, err := h.Events.ListEvents(ctx, c.QueryParam("q"))
	if err != nil {
		return unavailable(c, "list events", err)
	}
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, viewOf(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// GetPublic handles GET /v1/events/:id.
func (h *EventHandler) GetPublic(c echo.Context) error {
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	e, err := h.Events.GetEvent(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return notFound(c, "event not found")
		}
		return unavailable(c, "load event", err)
	}
	return c.JSON(http.StatusOK, viewOf(e))
}

// Create handles POST /v1/organizer/events. The organizer is the caller.
func (h *EventHandler) Create(c echo.Context) error {
	organizerID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	date, err := parseEventDate(req.Date)
	if err != nil {
		return badRequest(c, "event_date must be YYYY-MM-DD")
	}
	e := model.Event{
		ID:                uuid.NewString(),
		OrganizerID:       organizerID,
		Name:              req.Name,
		Date:              date.UTC(),
		BaseStallFeePaise: req.BaseStallFeePaise,
		ExpectedFootfall:  req.ExpectedFootfall,
		ContactPhone:      req.ContactPhone,
		CreatedAt:         time.Now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()
	if err := h.Events.Create(ctx, &e); err != nil {
		return unavailable(c, "create event", err)
	}
	return c.JSON(http.StatusCreated, viewOf(e))
}

// ListMine handles GET /v1/organizer/events.
func (h *EventHandler) ListMine(c echo.Context) error {
	organizerID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	events, err := h.Events.ListEventsByOrganizer(ctx, organizerID)
	if err != nil {
		return unavailable(c, "list events", err)
	}
	out := make([]eventView, 0, len(events))
	for _, e := range events {
		out = append(out, viewOf(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// Marketplace handles GET /v1/vendor/events?q=. Each event carries
// applied=true when the vendor already holds a pending or approved offer.
func (h *EventHandler) Marketplace(c echo.Context) error {
	vendorID, ok := actor(c)
	if !ok {
		return unauthorized(c, "unauthorized")
	}
	ctx, cancel := requestCtx(c, h.Timeout)
	defer cancel()

	events, err := h.Events.ListEvents(ctx, c.QueryParam("q"))
	if err != nil {
		return unavailable(c, "list events", err)
	}
	applied, err := h.Bookings.ActiveEventIDsForVendor(ctx, vendorID)
	if err != nil {
		return unavailable(c, "load offers", err)
	}
	out := make([]marketplaceEvent, 0, len(events))
	for _, e := range events {
		out = append(out, marketplaceEvent{eventView: viewOf(e), Applied: applied[e.ID]})
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}
