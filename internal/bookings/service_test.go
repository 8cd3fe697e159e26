package bookings

import (
	"context"
	"sync"
	"testing"

	"kerya/internal/access"
	"kerya/internal/listings"
	"kerya/internal/shared/apperrors"
	"kerya/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingRepo mirrors the persistence contract in memory: the same
// availability and recompute rules run, just without the database.
type fakeBookingRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*listings.Listing
	bookings map[uuid.UUID]*Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		listings: make(map[uuid.UUID]*listings.Listing),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (f *fakeBookingRepo) CreateIfAvailable(ctx context.Context, booking *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	listing, ok := f.listings[booking.ListingID]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "listing not found")
	}
	if !listing.IsBookable() {
		return apperrors.New(apperrors.KindValidation, "listing is not open for booking")
	}
	for _, existing := range f.bookings {
		if existing.ListingID != booking.ListingID {
			continue
		}
		if existing.Status != StatusRequested && existing.Status != StatusAccepted {
			continue
		}
		if existing.StartDate.Before(booking.EndDate) && existing.EndDate.After(booking.StartDate) {
			return apperrors.New(apperrors.KindAvailabilityConflict, "listing is not available for the requested dates")
		}
	}

	booking.ID = uuid.New()
	booking.Recompute(listing.PricePerNight)
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
	}
	copied := *booking
	copied.Listing = f.listings[booking.ListingID]
	return &copied, nil
}

func (f *fakeBookingRepo) Transition(ctx context.Context, id uuid.UUID, mutate func(*Booking) error) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
	}
	listing := f.listings[booking.ListingID]
	if err := mutate(booking); err != nil {
		return nil, err
	}
	booking.Recompute(listing.PricePerNight)
	copied := *booking
	copied.Listing = listing
	return &copied, nil
}

func (f *fakeBookingRepo) GetGuestBookings(ctx context.Context, guestID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []Booking
	for _, b := range f.bookings {
		if b.GuestID == guestID {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeBookingRepo) GetListingBookings(ctx context.Context, listingID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []Booking
	for _, b := range f.bookings {
		if b.ListingID == listingID {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

type fakeListingService struct {
	repo *fakeBookingRepo
}

func (f *fakeListingService) GetListingByID(ctx context.Context, id uuid.UUID) (*listings.Listing, error) {
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	listing, ok := f.repo.listings[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "listing not found")
	}
	return listing, nil
}

type bookingFixture struct {
	service Service
	repo    *fakeBookingRepo
	host    access.Actor
	guest   access.Actor
	house   *listings.Listing
	hotel   *listings.Listing
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	repo := newFakeBookingRepo()
	host := access.Actor{ID: uuid.New(), Role: users.RoleHost}
	guest := access.Actor{ID: uuid.New(), Role: users.RoleVisitor}

	house := &listings.Listing{
		ID:            uuid.New(),
		OwnerID:       host.ID,
		Type:          listings.TypeHouse,
		Status:        listings.StatusActive,
		PricePerNight: decimal.NewFromInt(7000),
		Currency:      "DZD",
	}
	hotel := &listings.Listing{
		ID:            uuid.New(),
		OwnerID:       host.ID,
		Type:          listings.TypeHotel,
		Status:        listings.StatusActive,
		PricePerNight: decimal.NewFromInt(12000),
		Currency:      "DZD",
	}
	repo.listings[house.ID] = house
	repo.listings[hotel.ID] = hotel

	return &bookingFixture{
		service: NewService(repo, &fakeListingService{repo: repo}),
		repo:    repo,
		host:    host,
		guest:   guest,
		house:   house,
		hotel:   hotel,
	}
}

func (fx *bookingFixture) createBooking(t *testing.T, listingID uuid.UUID, start, end string) *Booking {
	t.Helper()
	booking, err := fx.service.CreateBooking(context.Background(), fx.guest, CreateBookingRequest{
		ListingID: listingID.String(),
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return booking
}

func TestCreateBookingHouseStartsRequested(t *testing.T) {
	fx := newBookingFixture(t)

	booking := fx.createBooking(t, fx.house.ID, "2026-07-10", "2026-07-13")

	assert.Equal(t, StatusRequested, booking.Status)
	assert.Nil(t, booking.DecisionAt)
	assert.Equal(t, 3, booking.Nights)
	assert.True(t, decimal.NewFromInt(21000).Equal(booking.PriceTotal), "got %s", booking.PriceTotal)
	assert.Equal(t, "DZD", booking.Currency)
	assert.True(t, booking.IsActive)
}

func TestCreateBookingHotelAutoConfirms(t *testing.T) {
	fx := newBookingFixture(t)

	booking := fx.createBooking(t, fx.hotel.ID, "2026-07-10", "2026-07-12")

	assert.Equal(t, StatusAccepted, booking.Status)
	assert.NotNil(t, booking.DecisionAt)
	assert.Equal(t, 2, booking.Nights)
	assert.True(t, decimal.NewFromInt(24000).Equal(booking.PriceTotal))
}

func TestCreateBookingValidation(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	_, err := fx.service.CreateBooking(ctx, fx.guest, CreateBookingRequest{
		ListingID: fx.house.ID.String(),
		StartDate: "2026-07-13",
		EndDate:   "2026-07-10",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "end before start")

	_, err = fx.service.CreateBooking(ctx, fx.guest, CreateBookingRequest{
		ListingID: fx.house.ID.String(),
		StartDate: "2026-07-10",
		EndDate:   "2026-07-10",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "zero nights")

	_, err = fx.service.CreateBooking(ctx, fx.guest, CreateBookingRequest{
		ListingID: fx.house.ID.String(),
		StartDate: "10/07/2026",
		EndDate:   "13/07/2026",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "bad date format")

	_, err = fx.service.CreateBooking(ctx, fx.host, CreateBookingRequest{
		ListingID: fx.house.ID.String(),
		StartDate: "2026-07-10",
		EndDate:   "2026-07-13",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "host booking own listing")
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	fx.createBooking(t, fx.house.ID, "2026-07-10", "2026-07-15")

	_, err := fx.service.CreateBooking(ctx, access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, CreateBookingRequest{
		ListingID: fx.house.ID.String(),
		StartDate: "2026-07-12",
		EndDate:   "2026-07-14",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindAvailabilityConflict))

	// Back to back stays share a boundary date without overlapping.
	_, err = fx.service.CreateBooking(ctx, access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, CreateBookingRequest{
		ListingID: fx.house.ID.String(),
		StartDate: "2026-07-15",
		EndDate:   "2026-07-18",
	})
	assert.NoError(t, err)
}

func TestCreateBookingIgnoresTerminalOverlap(t *testing.T) {
	fx := newBookingFixture(t)

	first := fx.createBooking(t, fx.house.ID, "2026-07-10", "2026-07-15")
	_, err := fx.service.Decline(context.Background(), fx.host, first.ID)
	require.NoError(t, err)

	// The declined booking no longer blocks the dates.
	fx.createBooking(t, fx.house.ID, "2026-07-12", "2026-07-14")
}

func TestHostTransitionsRejectGuest(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, fx.house.ID, "2026-07-10", "2026-07-13")

	for _, tr := range []Transition{TransitionAccept, TransitionDecline, TransitionCheckIn, TransitionCheckOut, TransitionNoShow} {
		_, err := fx.service.ApplyTransition(ctx, fx.guest, booking.ID, tr)
		assert.True(t, apperrors.Is(err, apperrors.KindPermission), "transition %s", tr)
	}
}

func TestAcceptThenCheckInThenCheckOut(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, fx.house.ID, "2026-07-10", "2026-07-13")

	accepted, err := fx.service.Accept(ctx, fx.host, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)
	assert.True(t, accepted.IsActive)

	checkedIn, err := fx.service.CheckIn(ctx, fx.host, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, checkedIn.Status)

	checkedOut, err := fx.service.CheckOut(ctx, fx.host, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, checkedOut.Status)
	assert.False(t, checkedOut.IsActive)

	// Terminal: nothing else may run.
	_, err = fx.service.NoShow(ctx, fx.host, booking.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindInactiveBooking))
}

func TestCancelParties(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()

	t.Run("guest cancels own request", func(t *testing.T) {
		booking := fx.createBooking(t, fx.house.ID, "2026-08-01", "2026-08-03")
		cancelled, err := fx.service.Cancel(ctx, fx.guest, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelledRequest, cancelled.Status)
	})

	t.Run("host cancel of pending request is refused", func(t *testing.T) {
		booking := fx.createBooking(t, fx.house.ID, "2026-08-05", "2026-08-07")
		_, err := fx.service.Cancel(ctx, fx.host, booking.ID)
		assert.True(t, apperrors.Is(err, apperrors.KindPermission))
	})

	t.Run("host cancels accepted booking", func(t *testing.T) {
		booking := fx.createBooking(t, fx.house.ID, "2026-08-10", "2026-08-12")
		_, err := fx.service.Accept(ctx, fx.host, booking.ID)
		require.NoError(t, err)

		cancelled, err := fx.service.Cancel(ctx, fx.host, booking.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelledHost, cancelled.Status)
	})

	t.Run("stranger cannot cancel", func(t *testing.T) {
		booking := fx.createBooking(t, fx.house.ID, "2026-08-15", "2026-08-17")
		_, err := fx.service.Cancel(ctx, access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, booking.ID)
		assert.True(t, apperrors.Is(err, apperrors.KindPermission))
	})
}

func TestApplyTransitionRejectsUnknown(t *testing.T) {
	fx := newBookingFixture(t)
	booking := fx.createBooking(t, fx.house.ID, "2026-07-10", "2026-07-13")

	_, err := fx.service.ApplyTransition(context.Background(), fx.host, booking.ID, Transition("approve"))
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestGetBookingAccess(t *testing.T) {
	fx := newBookingFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, fx.house.ID, "2026-07-10", "2026-07-13")

	_, err := fx.service.GetBooking(ctx, fx.guest, booking.ID)
	assert.NoError(t, err)

	_, err = fx.service.GetBooking(ctx, fx.host, booking.ID)
	assert.NoError(t, err)

	admin := access.Actor{ID: uuid.New(), Role: users.RoleAdmin}
	_, err = fx.service.GetBooking(ctx, admin, booking.ID)
	assert.NoError(t, err)

	_, err = fx.service.GetBooking(ctx, access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, booking.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))

	_, err = fx.service.GetBooking(ctx, fx.guest, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestConcurrentBookingsOnlyOneWins(t *testing.T) {
	fx := newBookingFixture(t)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.CreateBooking(context.Background(), access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, CreateBookingRequest{
				ListingID: fx.house.ID.String(),
				StartDate: "2026-09-01",
				EndDate:   "2026-09-05",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperrors.Is(err, apperrors.KindAvailabilityConflict))
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one overlapping booking may be created")
}
