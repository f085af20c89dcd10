package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festopiya/stall-booking/internal/model"
)

func sampleEvents() map[string]model.Event {
	return map[string]model.Event{
		"e1": {ID: "e1", OrganizerID: 1},
		"e2": {ID: "e2", OrganizerID: 1},
		"e3": {ID: "e3", OrganizerID: 2},
	}
}

func sampleBookings() []model.Booking {
	return []model.Booking{
		{ID: "b1", EventID: "e1", VendorID: 10},
		{ID: "b2", EventID: "e2", VendorID: 11},
		{ID: "b3", EventID: "e3", VendorID: 10},
		{ID: "b4", EventID: "gone", VendorID: 10},
	}
}

func TestVisibleToOrganizer(t *testing.T) {
	events := sampleEvents()
	view := VisibleToOrganizer(sampleBookings(), 1, events)

	require.Len(t, view.Visible, 2)
	for _, b := range view.Visible {
		assert.Equal(t, uint64(1), events[b.EventID].OrganizerID)
	}
	require.Len(t, view.Unresolved, 1)
	assert.Equal(t, "b4", view.Unresolved[0].ID)
}

func TestVisibleToOrganizerWithoutEvents(t *testing.T) {
	view := VisibleToOrganizer(sampleBookings(), 99, sampleEvents())
	assert.Empty(t, view.Visible)

	view = VisibleToOrganizer(sampleBookings(), 0, sampleEvents())
	assert.Empty(t, view.Visible)
	assert.Empty(t, view.Unresolved)
}

func TestVisibleToOrganizerNeverAdmitsForeignBookings(t *testing.T) {
	events := sampleEvents()
	bookings := sampleBookings()
	for _, org := range []uint64{1, 2, 3} {
		view := VisibleToOrganizer(bookings, org, events)
		for _, b := range view.Visible {
			ev, ok := events[b.EventID]
			require.True(t, ok)
			assert.Equal(t, org, ev.OrganizerID)
		}
		assert.Equal(t, len(bookings), len(view.Visible)+len(view.Unresolved)+countForeign(bookings, org, events))
	}
}

func countForeign(bookings []model.Booking, org uint64, events map[string]model.Event) int {
	n := 0
	for _, b := range bookings {
		if ev, ok := events[b.EventID]; ok && ev.OrganizerID != org {
			n++
		}
	}
	return n
}

func TestVisibleToVendor(t *testing.T) {
	got := VisibleToVendor(sampleBookings(), 10)
	require.Len(t, got, 3)
	for _, b := range got {
		assert.Equal(t, uint64(10), b.VendorID)
	}
	assert.Empty(t, VisibleToVendor(sampleBookings(), 12))
	assert.Empty(t, VisibleToVendor(sampleBookings(), 0))
}
