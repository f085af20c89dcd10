// Package queue defines the booking events exchanged over RabbitMQ together
// with their publisher and the ledger consumer.
package queue

import (
	"fmt"
	"time"

	"github.com/festopiya/stall-booking/internal/model"
)

// Queue names, one per booking lifecycle step.
const (
	QueueBookingOffered  = "booking.offered"
	QueueBookingApproved = "booking.approved"
	QueueBookingDeclined = "booking.declined"
)

// Queues lists every queue the ledger consumer drains.
var Queues = []string{QueueBookingOffered, QueueBookingApproved, QueueBookingDeclined}

// BookingEvent is published after a booking write commits. It carries enough
// for downstream consumers to log or notify without querying the database.
type BookingEvent struct {
	BookingID        string `json:"booking_id"`
	EventID          string `json:"event_id"`
	OrganizerID      uint64 `json:"organizer_id"`
	VendorID         uint64 `json:"vendor_id"`
	EventName        string `json:"event_name"`
	Status           string `json:"status"`
	TotalAmountPaise int64  `json:"total_amount_paise"`
	CommissionPaise  int64  `json:"commission_paise"`
	OccurredAt       string `json:"occurred_at"`
}

// NewBookingEvent snapshots b and its event at time at.
func NewBookingEvent(b model.Booking, ev model.Event, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:        b.ID,
		EventID:          b.EventID,
		OrganizerID:      ev.OrganizerID,
		VendorID:         b.VendorID,
		EventName:        ev.Name,
		Status:           string(b.Status),
		TotalAmountPaise: b.TotalAmountPaise,
		CommissionPaise:  b.CommissionPaise,
		OccurredAt:       at.UTC().Format(time.RFC3339),
	}
}

// QueueFor returns the queue an event with the given status belongs on.
func QueueFor(status model.Status) (string, error) {
	switch status {
	case model.StatusPending:
		return QueueBookingOffered, nil
	case model.StatusApproved:
		return QueueBookingApproved, nil
	case model.StatusDeclined:
		return QueueBookingDeclined, nil
	}
	return "", fmt.Errorf("no queue for status %q", status)
}
