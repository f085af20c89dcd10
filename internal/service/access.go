package service

import (
	"log"

	"github.com/festopiya/stall-booking/internal/model"
)

// OrganizerView is the outcome of filtering bookings for one organizer.
type OrganizerView struct {
	// Visible holds the bookings whose event is owned by the organizer.
	Visible []model.Booking
	// Unresolved holds bookings whose event could not be found. They are
	// neither admitted nor dropped; callers report them as integrity flags.
	Unresolved []model.Booking
}

// VisibleToOrganizer keeps the bookings whose referenced event belongs to
// organizerID. It is the authoritative boundary and is applied to every
// retrieval, even one the store already scoped with a join.
func VisibleToOrganizer(bookings []model.Booking, organizerID uint64, events map[string]model.Event) OrganizerView {
	view := OrganizerView{Visible: []model.Booking{}}
	if organizerID == 0 {
		return view
	}
	for _, b := range bookings {
		ev, ok := events[b.EventID]
		if !ok {
			log.Printf("integrity: booking %s references unresolved event %s", b.ID, b.EventID)
			view.Unresolved = append(view.Unresolved, b)
			continue
		}
		if ev.OrganizerID == organizerID {
			view.Visible = append(view.Visible, b)
		}
	}
	return view
}

// VisibleToVendor keeps the bookings placed by vendorID.
func VisibleToVendor(bookings []model.Booking, vendorID uint64) []model.Booking {
	out := []model.Booking{}
	if vendorID == 0 {
		return out
	}
	for _, b := range bookings {
		if b.VendorID == vendorID {
			out = append(out, b)
		}
	}
	return out
}
