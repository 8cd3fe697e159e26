package tickets

import (
	"context"
	"sync"
	"testing"
	"time"

	"kerya/internal/access"
	"kerya/internal/listings"
	"kerya/internal/shared/apperrors"
	"kerya/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTicketRepo keeps the persistence contract in memory. It routes every
// inventory mutation through the same ReserveLines/Release logic the real
// repository uses, under one mutex standing in for row locks.
type fakeTicketRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*listings.Listing
	types    map[uuid.UUID]*EventTicketType
	bookings map[uuid.UUID]*EventBooking
	tickets  map[uuid.UUID]*EventTicket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		listings: make(map[uuid.UUID]*listings.Listing),
		types:    make(map[uuid.UUID]*EventTicketType),
		bookings: make(map[uuid.UUID]*EventBooking),
		tickets:  make(map[uuid.UUID]*EventTicket),
	}
}

func (f *fakeTicketRepo) CreateTicketType(ctx context.Context, ticketType *EventTicketType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticketType.ID = uuid.New()
	f.types[ticketType.ID] = ticketType
	return nil
}

func (f *fakeTicketRepo) GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*EventTicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "ticket type not found")
	}
	copied := *tt
	return &copied, nil
}

func (f *fakeTicketRepo) ListTicketTypes(ctx context.Context, query TicketTypeListQuery) ([]EventTicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []EventTicketType
	for _, tt := range f.types {
		if query.EventID != "" && tt.EventID.String() != query.EventID {
			continue
		}
		result = append(result, *tt)
	}
	return result, nil
}

func (f *fakeTicketRepo) UpdateTicketType(ctx context.Context, id uuid.UUID, mutate func(*EventTicketType) error) (*EventTicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "ticket type not found")
	}
	if err := mutate(tt); err != nil {
		return nil, err
	}
	copied := *tt
	return &copied, nil
}

func (f *fakeTicketRepo) DeleteTicketType(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.types[id]; !ok {
		return apperrors.New(apperrors.KindNotFound, "ticket type not found")
	}
	delete(f.types, id)
	return nil
}

func (f *fakeTicketRepo) CreateBookingWithReservation(ctx context.Context, booking *EventBooking, lines []BookingLineInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	typesByID := make(map[uuid.UUID]*EventTicketType)
	for _, line := range lines {
		if tt, ok := f.types[line.TicketTypeID]; ok {
			typesByID[line.TicketTypeID] = tt
		}
	}

	totalTickets, totalAmount, err := ReserveLines(booking.EventID, typesByID, lines)
	if err != nil {
		return err
	}

	booking.ID = uuid.New()
	booking.TotalTickets = totalTickets
	booking.TotalAmount = totalAmount
	booking.Status = BookingPending
	booking.Lines = nil
	for _, line := range lines {
		booking.Lines = append(booking.Lines, BookingLine{
			ID:           uuid.New(),
			BookingID:    booking.ID,
			TicketTypeID: line.TicketTypeID,
			Quantity:     line.Quantity,
			UnitPrice:    typesByID[line.TicketTypeID].Price,
		})
	}
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeTicketRepo) loadBookingLocked(id uuid.UUID) (*EventBooking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
	}
	return booking, nil
}

func (f *fakeTicketRepo) snapshotBooking(booking *EventBooking) *EventBooking {
	copied := *booking
	copied.Event = f.listings[booking.EventID]
	copied.Tickets = nil
	for _, t := range f.tickets {
		if t.BookingID == booking.ID {
			copied.Tickets = append(copied.Tickets, *t)
		}
	}
	return &copied
}

func (f *fakeTicketRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, err := f.loadBookingLocked(id)
	if err != nil {
		return nil, err
	}
	return f.snapshotBooking(booking), nil
}

func (f *fakeTicketRepo) GetBookingByReference(ctx context.Context, reference string) (*EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, booking := range f.bookings {
		if booking.BookingReference == reference {
			return f.snapshotBooking(booking), nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
}

func (f *fakeTicketRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []EventBooking
	for _, b := range f.bookings {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeTicketRepo) GetEventBookings(ctx context.Context, eventID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []EventBooking
	for _, b := range f.bookings {
		if b.EventID == eventID {
			result = append(result, *b)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeTicketRepo) ConfirmBooking(ctx context.Context, id uuid.UUID, payment ConfirmBookingRequest, issue func(*EventBooking) ([]EventTicket, error)) (*EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, err := f.loadBookingLocked(id)
	if err != nil {
		return nil, err
	}
	if booking.Status == BookingConfirmed {
		return f.snapshotBooking(booking), nil
	}
	if booking.Status == BookingCancelled {
		return nil, apperrors.New(apperrors.KindValidation, "cannot confirm a cancelled booking")
	}

	tickets, err := issue(booking)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		tickets[i].ID = uuid.New()
		stored := tickets[i]
		f.tickets[stored.ID] = &stored
	}

	now := time.Now()
	booking.Status = BookingConfirmed
	booking.ConfirmedAt = &now
	if payment.PaymentMethod != "" {
		booking.PaymentMethod = payment.PaymentMethod
	}
	if payment.PaymentReference != "" {
		booking.PaymentReference = payment.PaymentReference
	}
	return f.snapshotBooking(booking), nil
}

func (f *fakeTicketRepo) CancelBooking(ctx context.Context, id uuid.UUID) (*EventBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	booking, err := f.loadBookingLocked(id)
	if err != nil {
		return nil, err
	}
	if booking.Status == BookingCancelled {
		return f.snapshotBooking(booking), nil
	}

	for _, line := range booking.Lines {
		if tt, ok := f.types[line.TicketTypeID]; ok {
			tt.Release(line.Quantity)
		}
	}
	for _, t := range f.tickets {
		if t.BookingID == booking.ID {
			t.Status = TicketCancelled
		}
	}

	now := time.Now()
	booking.Status = BookingCancelled
	booking.CancelledAt = &now
	return f.snapshotBooking(booking), nil
}

func (f *fakeTicketRepo) UseTicket(ctx context.Context, code string, mutate func(*EventTicket, BookingStatus) error) (*EventTicket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, t := range f.tickets {
		if t.QRCode != code && t.TicketNumber != code {
			continue
		}
		booking := f.bookings[t.BookingID]
		t.Booking = f.snapshotBooking(booking)
		if err := mutate(t, booking.Status); err != nil {
			return nil, err
		}
		copied := *t
		return &copied, nil
	}
	return nil, apperrors.New(apperrors.KindNotFound, "ticket not found")
}

type fakeEventListingService struct {
	repo *fakeTicketRepo
}

func (f *fakeEventListingService) GetListingByID(ctx context.Context, id uuid.UUID) (*listings.Listing, error) {
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	listing, ok := f.repo.listings[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "listing not found")
	}
	return listing, nil
}

type ticketFixture struct {
	service Service
	repo    *fakeTicketRepo
	host    access.Actor
	visitor access.Actor
	event   *listings.Listing
	house   *listings.Listing
	vip     *EventTicketType
	general *EventTicketType
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()

	repo := newFakeTicketRepo()
	host := access.Actor{ID: uuid.New(), Role: users.RoleHost}
	visitor := access.Actor{ID: uuid.New(), Role: users.RoleVisitor}

	event := &listings.Listing{
		ID:       uuid.New(),
		OwnerID:  host.ID,
		Type:     listings.TypeEvent,
		Status:   listings.StatusActive,
		Currency: "DZD",
	}
	house := &listings.Listing{
		ID:       uuid.New(),
		OwnerID:  host.ID,
		Type:     listings.TypeHouse,
		Status:   listings.StatusActive,
		Currency: "DZD",
	}
	repo.listings[event.ID] = event
	repo.listings[house.ID] = house

	vip := &EventTicketType{
		ID:                uuid.New(),
		EventID:           event.ID,
		Name:              "VIP",
		Price:             decimal.NewFromInt(5000),
		Currency:          "DZD",
		TotalQuantity:     5,
		AvailableQuantity: 5,
		MaxPerUser:        3,
		IsActive:          true,
	}
	general := &EventTicketType{
		ID:                uuid.New(),
		EventID:           event.ID,
		Name:              "General",
		Price:             decimal.NewFromInt(1500),
		Currency:          "DZD",
		TotalQuantity:     50,
		AvailableQuantity: 50,
		MaxPerUser:        10,
		IsActive:          true,
	}
	repo.types[vip.ID] = vip
	repo.types[general.ID] = general

	return &ticketFixture{
		service: NewService(repo, &fakeEventListingService{repo: repo}),
		repo:    repo,
		host:    host,
		visitor: visitor,
		event:   event,
		house:   house,
		vip:     vip,
		general: general,
	}
}

func (fx *ticketFixture) createBooking(t *testing.T, lines []BookingLineRequest) *EventBooking {
	t.Helper()
	booking, err := fx.service.CreateBooking(context.Background(), fx.visitor, CreateEventBookingRequest{
		EventID:       fx.event.ID.String(),
		Lines:         lines,
		CustomerName:  "Amine B",
		CustomerEmail: "amine@example.com",
	})
	require.NoError(t, err)
	return booking
}

func TestCreateEventBookingReservesInventory(t *testing.T) {
	fx := newTicketFixture(t)

	booking := fx.createBooking(t, []BookingLineRequest{
		{TicketTypeID: fx.vip.ID.String(), Quantity: 2},
		{TicketTypeID: fx.general.ID.String(), Quantity: 3},
	})

	assert.Equal(t, BookingPending, booking.Status)
	assert.Equal(t, 5, booking.TotalTickets)
	assert.True(t, decimal.NewFromInt(14500).Equal(booking.TotalAmount), "got %s", booking.TotalAmount)
	assert.Regexp(t, `^EVT-\d{8}-\d{4}$`, booking.BookingReference)
	assert.Len(t, booking.Lines, 2)

	assert.Equal(t, 3, fx.vip.AvailableQuantity)
	assert.Equal(t, 47, fx.general.AvailableQuantity)
}

func TestCreateEventBookingRejectsNonEvent(t *testing.T) {
	fx := newTicketFixture(t)

	_, err := fx.service.CreateBooking(context.Background(), fx.visitor, CreateEventBookingRequest{
		EventID:       fx.house.ID.String(),
		Lines:         []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}},
		CustomerName:  "Amine B",
		CustomerEmail: "amine@example.com",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestCreateEventBookingScenario(t *testing.T) {
	// total=5, max_per_user=3: reserve 3 succeeds, a further 3 fails and
	// leaves available untouched.
	fx := newTicketFixture(t)

	fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 3}})
	assert.Equal(t, 2, fx.vip.AvailableQuantity)

	_, err := fx.service.CreateBooking(context.Background(), fx.visitor, CreateEventBookingRequest{
		EventID:       fx.event.ID.String(),
		Lines:         []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 3}},
		CustomerName:  "Amine B",
		CustomerEmail: "amine@example.com",
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInsufficientInventory))
	assert.Equal(t, 2, fx.vip.AvailableQuantity)
}

func TestConfirmBookingMaterializesTickets(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{
		{TicketTypeID: fx.vip.ID.String(), Quantity: 2},
		{TicketTypeID: fx.general.ID.String(), Quantity: 1},
	})

	confirmed, err := fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{PaymentMethod: "card"})
	require.NoError(t, err)
	assert.Equal(t, BookingConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, "card", confirmed.PaymentMethod)
	require.Len(t, confirmed.Tickets, booking.TotalTickets)

	sum := decimal.Zero
	seen := make(map[string]bool)
	for _, ticket := range confirmed.Tickets {
		assert.Equal(t, TicketValid, ticket.Status)
		assert.Equal(t, "Amine B", ticket.HolderName)
		assert.Regexp(t, `^TKT-[0-9a-f]{6}-\d{6}$`, ticket.TicketNumber)
		assert.Len(t, ticket.QRCode, 32)
		assert.False(t, seen[ticket.TicketNumber], "ticket numbers must be unique")
		seen[ticket.TicketNumber] = true
		for _, line := range booking.Lines {
			if line.TicketTypeID == ticket.TicketTypeID {
				assert.True(t, line.UnitPrice.Equal(ticket.Price), "ticket price snapshots the line unit price")
			}
		}
		sum = sum.Add(ticket.Price)
	}
	assert.True(t, booking.TotalAmount.Equal(sum), "ticket prices must add up to the booking amount")
}

func TestConfirmBookingIsIdempotent(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 2}})

	first, err := fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{})
	require.NoError(t, err)
	second, err := fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{})
	require.NoError(t, err)

	assert.Len(t, second.Tickets, len(first.Tickets), "no duplicate materialization")
	assert.Equal(t, 2, len(fx.repo.tickets))
}

func TestConfirmCancelledBookingFails(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 2}})

	_, err := fx.service.CancelBooking(ctx, fx.visitor, booking.ID)
	require.NoError(t, err)

	_, err = fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestCancelBookingRestoresInventory(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 3}})
	require.Equal(t, 2, fx.vip.AvailableQuantity)

	_, err := fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{})
	require.NoError(t, err)

	cancelled, err := fx.service.CancelBooking(ctx, fx.visitor, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, BookingCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 5, fx.vip.AvailableQuantity)

	for _, ticket := range fx.repo.tickets {
		assert.Equal(t, TicketCancelled, ticket.Status)
	}

	// Second cancel is a no-op.
	again, err := fx.service.CancelBooking(ctx, fx.visitor, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, BookingCancelled, again.Status)
	assert.Equal(t, 5, fx.vip.AvailableQuantity, "inventory must not be restored twice")
}

func TestUseTicket(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})
	confirmed, err := fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{})
	require.NoError(t, err)
	ticket := confirmed.Tickets[0]

	used, err := fx.service.UseTicket(ctx, fx.host, ticket.QRCode)
	require.NoError(t, err)
	assert.Equal(t, TicketUsed, used.Status)
	assert.NotNil(t, used.UsedAt)

	_, err = fx.service.UseTicket(ctx, fx.host, ticket.QRCode)
	assert.True(t, apperrors.Is(err, apperrors.KindAlreadyUsed))

	_, err = fx.service.UseTicket(ctx, fx.host, "no-such-code")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestUseTicketByTicketNumber(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})
	confirmed, err := fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{})
	require.NoError(t, err)

	used, err := fx.service.UseTicket(ctx, fx.host, confirmed.Tickets[0].TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, TicketUsed, used.Status)
}

func TestUseTicketRequiresConfirmedBooking(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})

	// Materialize a ticket by hand against the still-pending booking.
	ticket := &EventTicket{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		TicketTypeID: fx.vip.ID,
		TicketNumber: "TKT-abc123-000001",
		QRCode:       "qr-pending",
		Status:       TicketValid,
	}
	fx.repo.tickets[ticket.ID] = ticket

	_, err := fx.service.UseTicket(ctx, fx.host, "qr-pending")
	assert.True(t, apperrors.Is(err, apperrors.KindTicketNotUsable))
}

func TestUseTicketRejectsNonOwner(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})
	confirmed, err := fx.service.ConfirmBooking(ctx, fx.visitor, booking.ID, ConfirmBookingRequest{})
	require.NoError(t, err)
	ticket := confirmed.Tickets[0]

	_, err = fx.service.UseTicket(ctx, access.Actor{ID: uuid.New(), Role: users.RoleHost}, ticket.QRCode)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))

	admin := access.Actor{ID: uuid.New(), Role: users.RoleAdmin}
	used, err := fx.service.UseTicket(ctx, admin, ticket.QRCode)
	require.NoError(t, err)
	assert.Equal(t, TicketUsed, used.Status)
}

func TestTicketTypeGuards(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	_, err := fx.service.CreateTicketType(ctx, fx.visitor, CreateTicketTypeRequest{
		EventID:       fx.event.ID.String(),
		Name:          "Early Bird",
		Price:         decimal.NewFromInt(900),
		TotalQuantity: 10,
	})
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))

	created, err := fx.service.CreateTicketType(ctx, fx.host, CreateTicketTypeRequest{
		EventID:       fx.event.ID.String(),
		Name:          "Early Bird",
		Price:         decimal.NewFromInt(900),
		TotalQuantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, created.AvailableQuantity, "available defaults to total")
	assert.Equal(t, defaultMaxPerUser, created.MaxPerUser)
	assert.Equal(t, "DZD", created.Currency)

	_, err = fx.service.CreateTicketType(ctx, fx.host, CreateTicketTypeRequest{
		EventID:       fx.house.ID.String(),
		Name:          "Nope",
		TotalQuantity: 10,
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "ticket types only attach to events")
}

func TestUpdateTicketTypeReclamps(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 3}})
	require.Equal(t, 2, fx.vip.AvailableQuantity)

	newTotal := 3
	updated, err := fx.service.UpdateTicketType(ctx, fx.host, fx.vip.ID, UpdateTicketTypeRequest{TotalQuantity: &newTotal})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.TotalQuantity)
	assert.Equal(t, 0, updated.AvailableQuantity, "available reclamped to max(0, total-sold)")
}

func TestDeleteTicketTypeWithSalesFails(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})

	err := fx.service.DeleteTicketType(ctx, fx.host, fx.vip.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	require.NoError(t, fx.service.DeleteTicketType(ctx, fx.host, fx.general.ID))
}

func TestEventBookingAccess(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})

	_, err := fx.service.GetBooking(ctx, fx.visitor, booking.ID)
	assert.NoError(t, err)

	_, err = fx.service.GetBooking(ctx, fx.host, booking.ID)
	assert.NoError(t, err, "event owner may view")

	_, err = fx.service.GetBooking(ctx, access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, booking.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))

	// Only the purchaser may confirm.
	_, err = fx.service.ConfirmBooking(ctx, fx.host, booking.ID, ConfirmBookingRequest{})
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))
}

func TestGetBookingByReference(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()
	booking := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})

	found, err := fx.service.GetBookingByReference(ctx, fx.visitor, booking.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)

	_, err = fx.service.GetBookingByReference(ctx, fx.host, booking.BookingReference)
	assert.NoError(t, err, "event owner may view")

	_, err = fx.service.GetBookingByReference(ctx, access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, booking.BookingReference)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))

	_, err = fx.service.GetBookingByReference(ctx, fx.visitor, "")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	_, err = fx.service.GetBookingByReference(ctx, fx.visitor, "EVT-20260101-0000")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestConcurrentReservationsMinNK(t *testing.T) {
	fx := newTicketFixture(t)

	// K=5 units, N=12 single-unit requests: exactly 5 succeed.
	const attempts = 12
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.service.CreateBooking(context.Background(), access.Actor{ID: uuid.New(), Role: users.RoleVisitor}, CreateEventBookingRequest{
				EventID:       fx.event.ID.String(),
				Lines:         []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}},
				CustomerName:  "Load Test",
				CustomerEmail: "load@example.com",
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
			assert.True(t, apperrors.Is(err, apperrors.KindInsufficientInventory))
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, fx.vip.AvailableQuantity)
}

func TestInventoryConservation(t *testing.T) {
	fx := newTicketFixture(t)
	ctx := context.Background()

	b1 := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 2}})
	b2 := fx.createBooking(t, []BookingLineRequest{{TicketTypeID: fx.vip.ID.String(), Quantity: 1}})

	// available + active reservations == total at every quiescent point.
	assert.Equal(t, fx.vip.TotalQuantity, fx.vip.AvailableQuantity+3)

	_, err := fx.service.ConfirmBooking(ctx, fx.visitor, b1.ID, ConfirmBookingRequest{})
	require.NoError(t, err)
	assert.Equal(t, fx.vip.TotalQuantity, fx.vip.AvailableQuantity+3)

	_, err = fx.service.CancelBooking(ctx, fx.visitor, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.vip.TotalQuantity, fx.vip.AvailableQuantity+2)
}
