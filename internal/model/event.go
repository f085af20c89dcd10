package model

import (
	"errors"
	"strings"
	"time"
)

// Event is a fest listed by an organizer. Vendors browse events and place
// offers against them; nothing on the booking side ever mutates an event.
//
// Fields:
//
//	ID                : uuid primary key.
//	OrganizerID       : user ID of the organizer who owns the event.
//	Name              : display name of the fest.
//	Date              : day the event takes place (UTC).
//	BaseStallFeePaise : asking price for a stall, in paise.
//	ExpectedFootfall  : optional visitor estimate.
//	ContactPhone      : optional organizer contact shown to vendors.
//	CreatedAt         : creation timestamp.
type Event struct {
	ID                string    `json:"id"`                          // events.id
	OrganizerID       uint64    `json:"organizer_id"`                // events.organizer_id
	Name              string    `json:"event_name"`                  // events.event_name
	Date              time.Time `json:"event_date"`                  // events.event_date_ms
	BaseStallFeePaise int64     `json:"base_stall_fee_paise"`        // events.base_stall_fee_paise
	ExpectedFootfall  *int64    `json:"expected_footfall,omitempty"` // events.expected_footfall (nullable)
	ContactPhone      string    `json:"contact_phone,omitempty"`     // events.contact_phone
	CreatedAt         time.Time `json:"created_at"`                  // events.created_at_ms
}

var (
	ErrEventNameRequired = errors.New("event name is required")
	ErrEventDateRequired = errors.New("event date is required")
	ErrNegativeStallFee  = errors.New("base stall fee must not be negative")
	ErrNegativeFootfall  = errors.New("expected footfall must not be negative")
	ErrOrganizerRequired = errors.New("organizer is required")
	ErrStallNameRequired = errors.New("stall name is required")
	ErrVendorRequired    = errors.New("vendor is required")
	ErrOfferNotPositive  = errors.New("offered amount must be greater than zero")
	ErrUnknownStatus     = errors.New("unknown booking status")
)

// Validate normalizes the event in place and reports the first problem found.
func (e *Event) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	e.ContactPhone = strings.TrimSpace(e.ContactPhone)
	if e.OrganizerID == 0 {
		return ErrOrganizerRequired
	}
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.Date.IsZero() {
		return ErrEventDateRequired
	}
	if e.BaseStallFeePaise < 0 {
		return ErrNegativeStallFee
	}
	if e.ExpectedFootfall != nil && *e.ExpectedFootfall < 0 {
		return ErrNegativeFootfall
	}
	return nil
}
