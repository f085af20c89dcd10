package service

import (
	"log"
	"sort"

	"github.com/festopiya/stall-booking/internal/model"
)

// Totals is the approved amount over a booking set.
type Totals struct {
	TotalPaise int64
	// Flagged lists approved bookings, by id and sorted, whose stored total
	// was missing or negative and was therefore counted as zero.
	Flagged []string
}

// TotalApproved sums the total amount of the approved bookings. It does no
// authorization; callers filter first. The result does not depend on input
// order, and totals over disjoint sets add up.
func TotalApproved(bookings []model.Booking) Totals {
	var t Totals
	for _, b := range bookings {
		if b.Status != model.StatusApproved {
			continue
		}
		if b.TotalMissing || b.TotalAmountPaise < 0 {
			log.Printf("integrity: approved booking %s has unusable total (missing=%t, paise=%d); counted as 0",
				b.ID, b.TotalMissing, b.TotalAmountPaise)
			t.Flagged = append(t.Flagged, b.ID)
			continue
		}
		t.TotalPaise += b.TotalAmountPaise
	}
	sort.Strings(t.Flagged)
	return t
}
