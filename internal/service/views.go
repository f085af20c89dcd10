package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/festopiya/stall-booking/internal/model"
	"github.com/festopiya/stall-booking/internal/payment"
	"github.com/festopiya/stall-booking/internal/repository"
)

// OrganizerBooking is a booking row with the vendor's stall joined in for
// display. The join never feeds back into the core record.
type OrganizerBooking struct {
	model.Booking
	EventName    string `json:"event_name"`
	StallName    string `json:"stall_name,omitempty"`
	FoodCategory string `json:"food_category,omitempty"`
	VendorPhone  string `json:"vendor_phone,omitempty"`
}

// OrganizerSummary is the organizer's booking hub.
type OrganizerSummary struct {
	Bookings                []OrganizerBooking `json:"bookings"`
	TotalBookedRevenuePaise int64              `json:"total_booked_revenue_paise"`
	TotalBookedRevenue      string             `json:"total_booked_revenue"`
	Unresolved              int                `json:"unresolved"`
	Flagged                 []string           `json:"flagged"`
}

// VendorBooking is a booking row with its event joined in for display.
type VendorBooking struct {
	model.Booking
	EventName string     `json:"event_name"`
	EventDate *time.Time `json:"event_date,omitempty"`
}

// VendorSummary is the vendor's list of requests.
type VendorSummary struct {
	Bookings                  []VendorBooking `json:"bookings"`
	TotalStallInvestmentPaise int64           `json:"total_stall_investment_paise"`
	TotalStallInvestment      string          `json:"total_stall_investment"`
	Flagged                   []string        `json:"flagged"`
}

// OrganizerBookings lists the bookings on organizerID's events, newest first,
// with total booked revenue. Bookings whose event does not resolve are
// counted in Unresolved and logged by id. Their owner is unknown, so the ids
// are not handed to the caller.
func (s *BookingService) OrganizerBookings(ctx context.Context, organizerID uint64) (OrganizerSummary, error) {
	list, err := s.bookings.ListBookingsForOrganizerEvents(ctx, organizerID)
	if err != nil {
		return OrganizerSummary{}, unavailable("list bookings", err)
	}
	events, err := s.events.GetEvents(ctx, eventIDs(list))
	if err != nil {
		return OrganizerSummary{}, unavailable("load events", err)
	}
	view := VisibleToOrganizer(list, organizerID, events)
	totals := TotalApproved(view.Visible)

	profiles, err := s.profiles.GetProfiles(ctx, vendorIDs(view.Visible))
	if err != nil {
		return OrganizerSummary{}, unavailable("load vendor profiles", err)
	}

	out := OrganizerSummary{
		Bookings:                make([]OrganizerBooking, 0, len(view.Visible)),
		TotalBookedRevenuePaise: totals.TotalPaise,
		TotalBookedRevenue:      payment.FormatRupees(totals.TotalPaise),
		Unresolved:              len(view.Unresolved),
		Flagged:                 nonNil(totals.Flagged),
	}
	for _, b := range view.Visible {
		row := OrganizerBooking{Booking: b, EventName: events[b.EventID].Name}
		if p, ok := profiles[b.VendorID]; ok {
			row.StallName = p.StallName
			row.FoodCategory = p.FoodCategory
			row.VendorPhone = p.Phone
		}
		out.Bookings = append(out.Bookings, row)
	}
	return out, nil
}

// VendorBookings lists vendorID's bookings, newest first, with the total
// stall investment over the approved ones.
func (s *BookingService) VendorBookings(ctx context.Context, vendorID uint64) (VendorSummary, error) {
	list, err := s.bookings.ListBookingsByVendor(ctx, vendorID)
	if err != nil {
		return VendorSummary{}, unavailable("list bookings", err)
	}
	visible := VisibleToVendor(list, vendorID)
	totals := TotalApproved(visible)

	events, err := s.events.GetEvents(ctx, eventIDs(visible))
	if err != nil {
		return VendorSummary{}, unavailable("load events", err)
	}

	out := VendorSummary{
		Bookings:                  make([]VendorBooking, 0, len(visible)),
		TotalStallInvestmentPaise: totals.TotalPaise,
		TotalStallInvestment:      payment.FormatRupees(totals.TotalPaise),
		Flagged:                   nonNil(totals.Flagged),
	}
	for _, b := range visible {
		row := VendorBooking{Booking: b}
		if ev, ok := events[b.EventID]; ok {
			d := ev.Date
			row.EventName = ev.Name
			row.EventDate = &d
		} else {
			log.Printf("integrity: booking %s references unresolved event %s", b.ID, b.EventID)
		}
		out.Bookings = append(out.Bookings, row)
	}
	return out, nil
}

// PaymentIntent builds the UPI link for vendorID's approved booking. Only
// the amount and memo come from the booking; settlement is never observed.
func (s *BookingService) PaymentIntent(ctx context.Context, vendorID uint64, bookingID string, payee payment.Payee) (payment.Intent, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return payment.Intent{}, newError(KindNotFound, "booking not found")
		}
		return payment.Intent{}, unavailable("load booking", err)
	}
	if len(VisibleToVendor([]model.Booking{b}, vendorID)) == 0 {
		return payment.Intent{}, newError(KindForbidden, "booking belongs to another vendor")
	}
	if b.Status != model.StatusApproved {
		return payment.Intent{}, newError(KindInvalidTransition, "only approved bookings can be paid")
	}
	if b.TotalMissing || b.TotalAmountPaise <= 0 {
		log.Printf("integrity: approved booking %s has unusable total; refusing payment link", b.ID)
		return payment.Intent{}, newError(KindValidation, "booking has no payable amount")
	}
	ev, err := s.events.GetEvent(ctx, b.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return payment.Intent{}, newError(KindNotFound, "event for booking not found")
		}
		return payment.Intent{}, unavailable("load event", err)
	}
	intent, err := payment.NewIntent(payee, b.TotalAmountPaise, payment.StallMemo(ev.Name))
	if err != nil {
		return payment.Intent{}, unavailable("build payment link", err)
	}
	return intent, nil
}

func eventIDs(bookings []model.Booking) []string {
	seen := make(map[string]bool, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if !seen[b.EventID] {
			seen[b.EventID] = true
			ids = append(ids, b.EventID)
		}
	}
	return ids
}

func vendorIDs(bookings []model.Booking) []uint64 {
	seen := make(map[uint64]bool, len(bookings))
	ids := make([]uint64, 0, len(bookings))
	for _, b := range bookings {
		if !seen[b.VendorID] {
			seen[b.VendorID] = true
			ids = append(ids, b.VendorID)
		}
	}
	return ids
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
