package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/festopiya/stall-booking/internal/model"
	"github.com/festopiya/stall-booking/internal/queue"
	"github.com/festopiya/stall-booking/internal/repository"
)

// EventCatalog resolves events. It may be served from a stale cache.
type EventCatalog interface {
	GetEvent(ctx context.Context, id string) (model.Event, error)
	GetEvents(ctx context.Context, ids []string) (map[string]model.Event, error)
}

// BookingStore is the persistence the engine writes through. InsertBooking
// must reject a second active offer for a (vendor, event) pair and
// UpdateBookingStatus must only apply while the row holds expected.
type BookingStore interface {
	InsertBooking(ctx context.Context, b model.Booking) (model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	ListBookingsByVendor(ctx context.Context, vendorID uint64) ([]model.Booking, error)
	ListBookingsForOrganizerEvents(ctx context.Context, organizerID uint64) ([]model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, expected, next model.Status, at time.Time) (model.Booking, error)
}

// ProfileDirectory looks up vendor profiles for display.
type ProfileDirectory interface {
	GetProfiles(ctx context.Context, vendorIDs []uint64) (map[uint64]model.VendorProfile, error)
}

// Publisher receives booking events once a write has committed.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// BookingService is the booking lifecycle engine. CreateOffer and
// TransitionStatus are the only paths that write bookings.
type BookingService struct {
	events   EventCatalog
	bookings BookingStore
	profiles ProfileDirectory
	pub      Publisher
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// NewBookingService wires the engine. pub may be nil to disable events.
func NewBookingService(events EventCatalog, bookings BookingStore, profiles ProfileDirectory, pub Publisher) *BookingService {
	return &BookingService{
		events:   events,
		bookings: bookings,
		profiles: profiles,
		pub:      pub,
		tracer:   otel.Tracer("github.com/festopiya/stall-booking/internal/service"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateOffer records a pending offer of offeredPaise from vendorID on
// eventID. The commission is taken out of the offer; the vendor pays exactly
// what was offered. vendorID must come from the authenticated actor.
func (s *BookingService) CreateOffer(ctx context.Context, vendorID uint64, eventID string, offeredPaise int64) (b model.Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.CreateOffer", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.Int64("vendor.id", int64(vendorID)),
	))
	defer func() { endSpan(span, err) }()

	if vendorID == 0 {
		return model.Booking{}, newError(KindValidation, "vendor is required")
	}
	if err := model.ValidateOfferAmount(offeredPaise); err != nil {
		return model.Booking{}, newError(KindValidation, err.Error())
	}

	ev, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return model.Booking{}, newError(KindNotFound, "event not found")
		}
		return model.Booking{}, unavailable("load event", err)
	}

	offer, err := model.NewOffer(s.newID(), ev.ID, vendorID, offeredPaise, s.now())
	if err != nil {
		return model.Booking{}, newError(KindValidation, err.Error())
	}
	stored, err := s.bookings.InsertBooking(ctx, offer)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOffer) {
			return model.Booking{}, newError(KindDuplicateOffer, "you already have an active offer for this event")
		}
		return model.Booking{}, unavailable("save offer", err)
	}

	s.publish(ctx, stored, ev)
	return stored, nil
}

// TransitionStatus moves a pending booking to approved or declined on behalf
// of organizerID, who must own the booking's event. The update is
// conditional on the booking still being pending, so of two racing
// decisions exactly one wins and the other gets KindInvalidTransition. The
// updated booking is returned so callers need not re-fetch.
func (s *BookingService) TransitionStatus(ctx context.Context, bookingID string, organizerID uint64, next model.Status) (b model.Booking, err error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.TransitionStatus", trace.WithAttributes(
		attribute.String("booking.id", bookingID),
		attribute.String("booking.next_status", string(next)),
		attribute.Int64("organizer.id", int64(organizerID)),
	))
	defer func() { endSpan(span, err) }()

	if !next.Terminal() {
		return model.Booking{}, newError(KindValidation, "status must be approved or declined")
	}

	current, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return model.Booking{}, newError(KindNotFound, "booking not found")
		}
		return model.Booking{}, unavailable("load booking", err)
	}
	ev, err := s.events.GetEvent(ctx, current.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			log.Printf("integrity: booking %s references unresolved event %s", current.ID, current.EventID)
			return model.Booking{}, newError(KindNotFound, "event for booking not found")
		}
		return model.Booking{}, unavailable("load event", err)
	}
	if organizerID == 0 || ev.OrganizerID != organizerID {
		return model.Booking{}, newError(KindForbidden, "only the event's organizer can decide on this booking")
	}
	if !current.Status.CanTransitionTo(next) {
		return model.Booking{}, newError(KindInvalidTransition, "booking is already "+string(current.Status))
	}

	updated, err := s.bookings.UpdateBookingStatus(ctx, current.ID, model.StatusPending, next, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPreconditionFailed):
			return model.Booking{}, newError(KindInvalidTransition, "booking was decided concurrently")
		case errors.Is(err, repository.ErrBookingNotFound):
			return model.Booking{}, newError(KindNotFound, "booking not found")
		}
		return model.Booking{}, unavailable("update booking", err)
	}

	s.publish(ctx, updated, ev)
	return updated, nil
}

// publish is fire-and-forget: the write has already committed.
func (s *BookingService) publish(ctx context.Context, b model.Booking, ev model.Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, queue.NewBookingEvent(b, ev, s.now())); err != nil {
		log.Printf("booking %s: publish %s event: %v", b.ID, b.Status, err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
	}
	span.End()
}
