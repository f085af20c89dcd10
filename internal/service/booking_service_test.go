package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/festopiya/stall-booking/internal/database"
	"github.com/festopiya/stall-booking/internal/model"
	"github.com/festopiya/stall-booking/internal/payment"
	"github.com/festopiya/stall-booking/internal/queue"
	"github.com/festopiya/stall-booking/internal/repository"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type fixture struct {
	svc      *BookingService
	events   *repository.EventRepo
	bookings *repository.BookingRepo
	profiles *repository.ProfileRepo
	pub      *mockPublisher
}

const (
	organizerO  uint64 = 1
	organizerO2 uint64 = 2
	vendorV     uint64 = 10
	vendorV2    uint64 = 11
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "stalls.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, "sqlite"))
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		events:   repository.NewEventRepo(db),
		bookings: repository.NewBookingRepo(db),
		profiles: repository.NewProfileRepo(db),
		pub:      &mockPublisher{},
	}
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil)
	f.svc = NewBookingService(repository.NewEventCache(f.events, nil, 0), f.bookings, f.profiles, f.pub)
	return f
}

func (f *fixture) event(t *testing.T, organizerID uint64, name string, feePaise int64) model.Event {
	t.Helper()
	e := model.Event{
		ID:                uuid.NewString(),
		OrganizerID:       organizerID,
		Name:              name,
		Date:              time.Now().Add(30 * 24 * time.Hour),
		BaseStallFeePaise: feePaise,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, f.events.Create(context.Background(), &e))
	return e
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "error: %v", err)
	assert.ErrorIs(t, err, &Error{Kind: kind})
}

func TestCreateOfferPendingWithCommission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)

	b, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, int64(450000), b.AgreedFeePaise)
	assert.Equal(t, int64(450000), b.TotalAmountPaise)
	assert.Equal(t, int64(22500), b.CommissionPaise)
	assert.False(t, b.CreatedAt.IsZero())

	stored, err := f.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, stored)

	f.pub.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.BookingID == b.ID && ev.Status == "pending" && ev.OrganizerID == organizerO
	}))
}

func TestCreateOfferRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)

	_, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 0)
	assertKind(t, err, KindValidation)

	_, err = f.svc.CreateOffer(ctx, vendorV, e.ID, -100)
	assertKind(t, err, KindValidation)

	_, err = f.svc.CreateOffer(ctx, 0, e.ID, 100)
	assertKind(t, err, KindValidation)

	_, err = f.svc.CreateOffer(ctx, vendorV, "missing", 100)
	assertKind(t, err, KindNotFound)

	f.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestApproveThenDeclineIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)
	b, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)

	approved, err := f.svc.TransitionStatus(ctx, b.ID, organizerO, model.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)

	summary, err := f.svc.OrganizerBookings(ctx, organizerO)
	require.NoError(t, err)
	assert.Equal(t, int64(450000), summary.TotalBookedRevenuePaise)
	assert.Equal(t, "₹4,500.00", summary.TotalBookedRevenue)

	_, err = f.svc.TransitionStatus(ctx, b.ID, organizerO, model.StatusDeclined)
	assertKind(t, err, KindInvalidTransition)

	_, err = f.svc.TransitionStatus(ctx, b.ID, organizerO, model.StatusApproved)
	assertKind(t, err, KindInvalidTransition)

	after, err := f.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, after.Status)
}

func TestTransitionByNonOwnerIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)
	b, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)

	for _, actor := range []uint64{vendorV2, organizerO2, 0} {
		_, err = f.svc.TransitionStatus(ctx, b.ID, actor, model.StatusApproved)
		assertKind(t, err, KindForbidden)
	}

	after, err := f.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, after.Status)
}

func TestTransitionRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)
	b, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(ctx, b.ID, organizerO, model.StatusPending)
	assertKind(t, err, KindValidation)

	_, err = f.svc.TransitionStatus(ctx, b.ID, organizerO, model.Status("cancelled"))
	assertKind(t, err, KindValidation)

	_, err = f.svc.TransitionStatus(ctx, "missing", organizerO, model.StatusApproved)
	assertKind(t, err, KindNotFound)
}

func TestDuplicateOfferWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)

	_, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)
	_, err = f.svc.CreateOffer(ctx, vendorV, e.ID, 480000)
	assertKind(t, err, KindDuplicateOffer)

	// approved offers block too
	other := f.event(t, organizerO, "Holi Fest", 300000)
	b, err := f.svc.CreateOffer(ctx, vendorV, other.ID, 300000)
	require.NoError(t, err)
	_, err = f.svc.TransitionStatus(ctx, b.ID, organizerO, model.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.CreateOffer(ctx, vendorV, other.ID, 300000)
	assertKind(t, err, KindDuplicateOffer)
}

func TestReofferAfterDecline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)

	first, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)
	declined, err := f.svc.TransitionStatus(ctx, first.ID, organizerO, model.StatusDeclined)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeclined, declined.Status)

	second, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 470000)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.StatusPending, second.Status)

	_, err = f.svc.TransitionStatus(ctx, first.ID, organizerO, model.StatusApproved)
	assertKind(t, err, KindInvalidTransition)
}

func TestConcurrentOffersOnlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateOffer(ctx, vendorV, e.ID, int64(400000+i))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assertKind(t, err, KindDuplicateOffer)
	}
	assert.Equal(t, 1, ok)
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)
	b, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)

	targets := []model.Status{model.StatusApproved, model.StatusDeclined, model.StatusApproved, model.StatusDeclined}
	results := make([]model.Booking, len(targets))
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, next := range targets {
		wg.Add(1)
		go func(i int, next model.Status) {
			defer wg.Done()
			results[i], errs[i] = f.svc.TransitionStatus(ctx, b.ID, organizerO, next)
		}(i, next)
	}
	wg.Wait()

	var winner model.Status
	wins := 0
	for i, err := range errs {
		if err == nil {
			wins++
			winner = results[i].Status
			continue
		}
		assertKind(t, err, KindInvalidTransition)
	}
	require.Equal(t, 1, wins)

	final, err := f.bookings.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, final.Status)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	f.svc.pub = pub
	e := f.event(t, organizerO, "Diwali Mela", 500000)

	b, err := f.svc.CreateOffer(context.Background(), vendorV, e.ID, 450000)
	require.NoError(t, err)
	_, err = f.bookings.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestOrganizerBookingsScopesAndJoinsProfiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.event(t, organizerO, "Diwali Mela", 500000)
	theirs := f.event(t, organizerO2, "Holi Fest", 300000)

	require.NoError(t, f.profiles.UpsertProfile(ctx, model.VendorProfile{
		VendorID: vendorV, StallName: "Chaat Corner", FoodCategory: "Street Food", Phone: "98450", UpdatedAt: time.Now(),
	}))

	a, err := f.svc.CreateOffer(ctx, vendorV, mine.ID, 450000)
	require.NoError(t, err)
	_, err = f.svc.CreateOffer(ctx, vendorV2, mine.ID, 200000)
	require.NoError(t, err)
	c, err := f.svc.CreateOffer(ctx, vendorV, theirs.ID, 300000)
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(ctx, a.ID, organizerO, model.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.TransitionStatus(ctx, c.ID, organizerO2, model.StatusApproved)
	require.NoError(t, err)

	summary, err := f.svc.OrganizerBookings(ctx, organizerO)
	require.NoError(t, err)
	require.Len(t, summary.Bookings, 2)
	assert.Equal(t, int64(450000), summary.TotalBookedRevenuePaise)
	assert.Zero(t, summary.Unresolved)
	assert.Empty(t, summary.Flagged)
	for _, row := range summary.Bookings {
		assert.Equal(t, mine.ID, row.EventID)
		assert.Equal(t, "Diwali Mela", row.EventName)
		if row.VendorID == vendorV {
			assert.Equal(t, "Chaat Corner", row.StallName)
		} else {
			assert.Empty(t, row.StallName)
		}
	}

	none, err := f.svc.OrganizerBookings(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none.Bookings)
	assert.Zero(t, none.TotalBookedRevenuePaise)
}

func TestOrganizerBookingsFlagsMissingEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.event(t, organizerO, "Diwali Mela", 500000)

	_, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)
	orphan, err := model.NewOffer(uuid.NewString(), "missing-event", vendorV2, 100000, time.Now())
	require.NoError(t, err)
	_, err = f.bookings.InsertBooking(ctx, orphan)
	require.NoError(t, err)

	summary, err := f.svc.OrganizerBookings(ctx, organizerO)
	require.NoError(t, err)
	require.Len(t, summary.Bookings, 1)
	assert.Equal(t, e.ID, summary.Bookings[0].EventID)
	assert.Equal(t, 1, summary.Unresolved)

	// the filter itself carries the orphan by id
	list, err := f.bookings.ListBookingsForOrganizerEvents(ctx, organizerO)
	require.NoError(t, err)
	events, err := f.events.GetEvents(ctx, eventIDs(list))
	require.NoError(t, err)
	view := VisibleToOrganizer(list, organizerO, events)
	require.Len(t, view.Unresolved, 1)
	assert.Equal(t, orphan.ID, view.Unresolved[0].ID)

	other, err := f.svc.OrganizerBookings(ctx, organizerO2)
	require.NoError(t, err)
	assert.Empty(t, other.Bookings)
	assert.Equal(t, 1, other.Unresolved)
}

func TestVendorBookingsInvestment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e1 := f.event(t, organizerO, "Diwali Mela", 500000)
	e2 := f.event(t, organizerO, "Holi Fest", 300000)
	e3 := f.event(t, organizerO2, "Onam Carnival", 100000)

	a, err := f.svc.CreateOffer(ctx, vendorV, e1.ID, 450000)
	require.NoError(t, err)
	b, err := f.svc.CreateOffer(ctx, vendorV, e2.ID, 250000)
	require.NoError(t, err)
	_, err = f.svc.CreateOffer(ctx, vendorV, e3.ID, 90000)
	require.NoError(t, err)
	_, err = f.svc.CreateOffer(ctx, vendorV2, e1.ID, 999900)
	require.NoError(t, err)

	_, err = f.svc.TransitionStatus(ctx, a.ID, organizerO, model.StatusApproved)
	require.NoError(t, err)
	_, err = f.svc.TransitionStatus(ctx, b.ID, organizerO, model.StatusApproved)
	require.NoError(t, err)

	summary, err := f.svc.VendorBookings(ctx, vendorV)
	require.NoError(t, err)
	require.Len(t, summary.Bookings, 3)
	assert.Equal(t, int64(700000), summary.TotalStallInvestmentPaise)
	assert.Equal(t, "₹7,000.00", summary.TotalStallInvestment)
	for _, row := range summary.Bookings {
		assert.Equal(t, vendorV, row.VendorID)
		assert.NotEmpty(t, row.EventName)
		assert.NotNil(t, row.EventDate)
	}
}

func TestPaymentIntent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payee := payment.Payee{VPA: "festopiya@upi", Name: "Festopiya Payments"}
	e := f.event(t, organizerO, "Diwali Mela", 500000)
	b, err := f.svc.CreateOffer(ctx, vendorV, e.ID, 450000)
	require.NoError(t, err)

	_, err = f.svc.PaymentIntent(ctx, vendorV, b.ID, payee)
	assertKind(t, err, KindInvalidTransition)

	_, err = f.svc.TransitionStatus(ctx, b.ID, organizerO, model.StatusApproved)
	require.NoError(t, err)

	_, err = f.svc.PaymentIntent(ctx, vendorV2, b.ID, payee)
	assertKind(t, err, KindForbidden)

	_, err = f.svc.PaymentIntent(ctx, vendorV, "missing", payee)
	assertKind(t, err, KindNotFound)

	intent, err := f.svc.PaymentIntent(ctx, vendorV, b.ID, payee)
	require.NoError(t, err)
	assert.Equal(t, int64(450000), intent.AmountPaise)
	assert.Equal(t, "Stall Payment for Diwali Mela", intent.Memo)
	assert.Contains(t, intent.Link, "am=4500.00")
}

type failingStore struct {
	BookingStore
	err error
}

func (s failingStore) InsertBooking(context.Context, model.Booking) (model.Booking, error) {
	return model.Booking{}, s.err
}

func (s failingStore) GetBooking(context.Context, string) (model.Booking, error) {
	return model.Booking{}, s.err
}

func TestStoreFailuresAreUnavailable(t *testing.T) {
	f := newFixture(t)
	e := f.event(t, organizerO, "Diwali Mela", 500000)
	f.svc.bookings = failingStore{err: context.DeadlineExceeded}

	_, err := f.svc.CreateOffer(context.Background(), vendorV, e.ID, 450000)
	assertKind(t, err, KindUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")

	_, err = f.svc.TransitionStatus(context.Background(), "b1", organizerO, model.StatusApproved)
	assertKind(t, err, KindUnavailable)
}
