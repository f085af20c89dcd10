package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommission(t *testing.T) {
	cases := []struct {
		total int64
		want  int64
	}{
		{total: 450000, want: 22500}, // ₹4500 -> ₹225
		{total: 500000, want: 25000},
		{total: 1, want: 0},
		{total: 10, want: 1}, // 0.5 paisa rounds up
		{total: 29, want: 1},
		{total: 30, want: 2},
		{total: 0, want: 0},
		{total: -100, want: 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Commission(tc.total), "total=%d", tc.total)
	}
}

func TestNewOffer(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))

	b, err := NewOffer("b-1", "e-1", 7, 450000, now)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, int64(450000), b.AgreedFeePaise)
	assert.Equal(t, int64(450000), b.TotalAmountPaise)
	assert.Equal(t, int64(22500), b.CommissionPaise)
	assert.Equal(t, time.UTC, b.CreatedAt.Location())
	assert.Nil(t, b.DecidedAt)
}

func TestNewOfferRejectsBadInput(t *testing.T) {
	_, err := NewOffer("b-1", "e-1", 7, 0, time.Now())
	assert.ErrorIs(t, err, ErrOfferNotPositive)

	_, err = NewOffer("b-1", "e-1", 7, -5, time.Now())
	assert.ErrorIs(t, err, ErrOfferNotPositive)

	_, err = NewOffer("b-1", "e-1", 0, 100, time.Now())
	assert.ErrorIs(t, err, ErrVendorRequired)
}

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusPending, StatusApproved, StatusDeclined}
	for _, from := range all {
		for _, to := range all {
			want := from == StatusPending && to != StatusPending
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusDeclined.Terminal())
	assert.True(t, StatusPending.Active())
	assert.True(t, StatusApproved.Active())
	assert.False(t, StatusDeclined.Active())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseStatus("APPROVED")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestEventValidate(t *testing.T) {
	footfall := int64(-1)
	e := Event{OrganizerID: 1, Name: "  Diwali Mela ", Date: time.Now(), BaseStallFeePaise: 500000}
	require.NoError(t, e.Validate())
	assert.Equal(t, "Diwali Mela", e.Name)

	bad := e
	bad.Name = "   "
	assert.ErrorIs(t, bad.Validate(), ErrEventNameRequired)

	bad = e
	bad.BaseStallFeePaise = -1
	assert.ErrorIs(t, bad.Validate(), ErrNegativeStallFee)

	bad = e
	bad.ExpectedFootfall = &footfall
	assert.ErrorIs(t, bad.Validate(), ErrNegativeFootfall)

	bad = e
	bad.Date = time.Time{}
	assert.ErrorIs(t, bad.Validate(), ErrEventDateRequired)

	bad = e
	bad.OrganizerID = 0
	assert.ErrorIs(t, bad.Validate(), ErrOrganizerRequired)
}

func TestVendorProfileValidate(t *testing.T) {
	p := VendorProfile{VendorID: 3, StallName: " Chaat Corner ", Phone: " 98450 00000 "}
	require.NoError(t, p.Validate())
	assert.Equal(t, "Chaat Corner", p.StallName)
	assert.Equal(t, "98450 00000", p.Phone)

	p.StallName = ""
	assert.ErrorIs(t, p.Validate(), ErrStallNameRequired)
}
