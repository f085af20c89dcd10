package model

import (
	"strings"
	"time"
)

// VendorProfile is the public face of a vendor's stall. There is exactly one
// per vendor account; VendorID doubles as the primary key.
type VendorProfile struct {
	VendorID     uint64    `json:"vendor_id"`     // vendor_profiles.vendor_id
	StallName    string    `json:"stall_name"`    // vendor_profiles.stall_name
	FoodCategory string    `json:"food_category"` // vendor_profiles.food_category
	Phone        string    `json:"phone"`         // vendor_profiles.phone
	UpdatedAt    time.Time `json:"updated_at"`    // vendor_profiles.updated_at_ms
}

// Validate trims the profile fields and checks the required ones.
func (p *VendorProfile) Validate() error {
	p.StallName = strings.TrimSpace(p.StallName)
	p.FoodCategory = strings.TrimSpace(p.FoodCategory)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.VendorID == 0 {
		return ErrVendorRequired
	}
	if p.StallName == "" {
		return ErrStallNameRequired
	}
	return nil
}
