package model

import "time"

// Status is the negotiation state of a booking offer.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// CommissionRateBps is the platform's cut of every booking in basis points.
const CommissionRateBps int64 = 500

// ParseStatus maps a raw status string onto a known Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusDeclined:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// CanTransitionTo reports whether moving from s to next is a legal step.
// Only pending bookings move, and only to approved or declined.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.Terminal()
}

// Active reports whether the booking still blocks a new offer from the same
// vendor on the same event.
func (s Status) Active() bool {
	return s != StatusDeclined
}

// Booking is a vendor's priced offer for a stall at an event.
//
// Fields:
//
//	ID               : uuid primary key.
//	EventID          : event the stall is offered for.
//	VendorID         : vendor account that placed the offer.
//	AgreedFeePaise   : the amount the vendor offered.
//	TotalAmountPaise : amount payable by the vendor; equals AgreedFeePaise.
//	TotalMissing     : set when the stored total is NULL (corrupt row).
//	CommissionPaise  : platform cut derived from the total.
//	Status           : pending, approved or declined.
//	CreatedAt        : when the offer was placed.
//	DecidedAt        : when the organizer approved or declined (nil while pending).
type Booking struct {
	ID               string     `json:"id"`                      // bookings.id
	EventID          string     `json:"event_id"`                // bookings.event_id
	VendorID         uint64     `json:"vendor_id"`               // bookings.vendor_id
	AgreedFeePaise   int64      `json:"agreed_fee_paise"`        // bookings.agreed_fee_paise
	TotalAmountPaise int64      `json:"total_amount_paise"`      // bookings.total_amount_paise (nullable in legacy rows)
	TotalMissing     bool       `json:"total_missing,omitempty"` // derived from a NULL total
	CommissionPaise  int64      `json:"commission_paise"`        // bookings.commission_paise
	Status           Status     `json:"status"`                  // bookings.status
	CreatedAt        time.Time  `json:"created_at"`              // bookings.created_at_ms
	DecidedAt        *time.Time `json:"decided_at,omitempty"`    // bookings.decided_at_ms (nullable)
}

// Commission returns the platform cut for a total, rounded half up to the
// nearest paisa.
func Commission(totalPaise int64) int64 {
	if totalPaise <= 0 {
		return 0
	}
	return (totalPaise*CommissionRateBps + 5000) / 10000
}

// ValidateOfferAmount checks a vendor's offered amount.
func ValidateOfferAmount(paise int64) error {
	if paise <= 0 {
		return ErrOfferNotPositive
	}
	return nil
}

// NewOffer builds a pending booking for the given vendor, event and offered
// amount. The commission is taken out of the offer, not added on top, so the
// vendor pays exactly what they offered.
func NewOffer(id, eventID string, vendorID uint64, offeredPaise int64, now time.Time) (Booking, error) {
	if vendorID == 0 {
		return Booking{}, ErrVendorRequired
	}
	if err := ValidateOfferAmount(offeredPaise); err != nil {
		return Booking{}, err
	}
	return Booking{
		ID:               id,
		EventID:          eventID,
		VendorID:         vendorID,
		AgreedFeePaise:   offeredPaise,
		TotalAmountPaise: offeredPaise,
		CommissionPaise:  Commission(offeredPaise),
		Status:           StatusPending,
		CreatedAt:        now.UTC(),
	}, nil
}
