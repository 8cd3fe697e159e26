package tickets

import (
	"testing"
	"time"

	"kerya/internal/shared/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTicketType(eventID uuid.UUID, total int, price int64) *EventTicketType {
	return &EventTicketType{
		ID:                uuid.New(),
		EventID:           eventID,
		Name:              "General",
		Price:             decimal.NewFromInt(price),
		Currency:          "DZD",
		TotalQuantity:     total,
		AvailableQuantity: total,
		MaxPerUser:        10,
		IsActive:          true,
	}
}

func TestReserve(t *testing.T) {
	tt := newTestTicketType(uuid.New(), 5, 1000)

	require.NoError(t, tt.Reserve(3))
	assert.Equal(t, 2, tt.AvailableQuantity)
	assert.Equal(t, 3, tt.SoldQuantity())

	err := tt.Reserve(3)
	assert.True(t, apperrors.Is(err, apperrors.KindInsufficientInventory))
	assert.Equal(t, 2, tt.AvailableQuantity, "failed reserve must not move inventory")

	err = tt.Reserve(0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	tt.IsActive = false
	err = tt.Reserve(1)
	assert.True(t, apperrors.Is(err, apperrors.KindTicketTypeInactive))
}

func TestReleaseClampsToTotal(t *testing.T) {
	tt := newTestTicketType(uuid.New(), 5, 1000)
	require.NoError(t, tt.Reserve(2))

	tt.Release(1)
	assert.Equal(t, 4, tt.AvailableQuantity)

	// Releasing more than was sold clamps at the total.
	tt.Release(10)
	assert.Equal(t, 5, tt.AvailableQuantity)

	tt.Release(-3)
	assert.Equal(t, 5, tt.AvailableQuantity)
}

func TestApplyTotalQuantityReclamps(t *testing.T) {
	tt := newTestTicketType(uuid.New(), 10, 1000)
	require.NoError(t, tt.Reserve(6))
	require.Equal(t, 4, tt.AvailableQuantity)

	// Growing capacity keeps sold units and extends availability.
	require.NoError(t, tt.ApplyTotalQuantity(12))
	assert.Equal(t, 12, tt.TotalQuantity)
	assert.Equal(t, 6, tt.AvailableQuantity)
	assert.Equal(t, 6, tt.SoldQuantity())

	// Shrinking below sold clamps availability at zero.
	require.NoError(t, tt.ApplyTotalQuantity(4))
	assert.Equal(t, 4, tt.TotalQuantity)
	assert.Equal(t, 0, tt.AvailableQuantity)

	err := tt.ApplyTotalQuantity(-1)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestIsAvailable(t *testing.T) {
	tt := newTestTicketType(uuid.New(), 1, 1000)
	assert.True(t, tt.IsAvailable())

	require.NoError(t, tt.Reserve(1))
	assert.False(t, tt.IsAvailable(), "sold out")

	tt.Release(1)
	tt.IsActive = false
	assert.False(t, tt.IsAvailable(), "inactive")
}

func TestReserveLines(t *testing.T) {
	eventID := uuid.New()
	vip := newTestTicketType(eventID, 5, 5000)
	general := newTestTicketType(eventID, 20, 1500)
	general.MaxPerUser = 4
	types := map[uuid.UUID]*EventTicketType{vip.ID: vip, general.ID: general}

	total, amount, err := ReserveLines(eventID, types, []BookingLineInput{
		{TicketTypeID: vip.ID, Quantity: 2},
		{TicketTypeID: general.ID, Quantity: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.True(t, decimal.NewFromInt(14500).Equal(amount), "got %s", amount)
	assert.Equal(t, 3, vip.AvailableQuantity)
	assert.Equal(t, 17, general.AvailableQuantity)
}

func TestReserveLinesAllOrNothing(t *testing.T) {
	eventID := uuid.New()
	vip := newTestTicketType(eventID, 5, 5000)
	general := newTestTicketType(eventID, 2, 1500)
	types := map[uuid.UUID]*EventTicketType{vip.ID: vip, general.ID: general}

	// Second line fails on inventory, so the first line must not decrement.
	_, _, err := ReserveLines(eventID, types, []BookingLineInput{
		{TicketTypeID: vip.ID, Quantity: 2},
		{TicketTypeID: general.ID, Quantity: 3},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInsufficientInventory))
	assert.Equal(t, 5, vip.AvailableQuantity)
	assert.Equal(t, 2, general.AvailableQuantity)
}

func TestReserveLinesAggregatesDuplicateTypes(t *testing.T) {
	eventID := uuid.New()
	tt := newTestTicketType(eventID, 10, 1000)
	tt.MaxPerUser = 3
	types := map[uuid.UUID]*EventTicketType{tt.ID: tt}

	// Two lines of 2 for the same type sum to 4, over the per-user cap of 3.
	_, _, err := ReserveLines(eventID, types, []BookingLineInput{
		{TicketTypeID: tt.ID, Quantity: 2},
		{TicketTypeID: tt.ID, Quantity: 2},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "per-user limit applies to the summed quantity")
	assert.Equal(t, 10, tt.AvailableQuantity)

	// Duplicate lines summing over availability fail the same way.
	tt.MaxPerUser = 20
	tt.AvailableQuantity = 5
	_, _, err = ReserveLines(eventID, types, []BookingLineInput{
		{TicketTypeID: tt.ID, Quantity: 3},
		{TicketTypeID: tt.ID, Quantity: 3},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInsufficientInventory))
	assert.Equal(t, 5, tt.AvailableQuantity)

	// Duplicate lines within both limits reserve the sum once.
	total, amount, err := ReserveLines(eventID, types, []BookingLineInput{
		{TicketTypeID: tt.ID, Quantity: 2},
		{TicketTypeID: tt.ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.True(t, decimal.NewFromInt(4000).Equal(amount), "got %s", amount)
	assert.Equal(t, 1, tt.AvailableQuantity)
}

func TestReserveLinesValidation(t *testing.T) {
	eventID := uuid.New()
	tt := newTestTicketType(eventID, 5, 1000)
	tt.MaxPerUser = 3
	types := map[uuid.UUID]*EventTicketType{tt.ID: tt}

	_, _, err := ReserveLines(eventID, types, nil)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "empty lines")

	_, _, err = ReserveLines(eventID, types, []BookingLineInput{{TicketTypeID: uuid.New(), Quantity: 1}})
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "unknown type")

	_, _, err = ReserveLines(uuid.New(), types, []BookingLineInput{{TicketTypeID: tt.ID, Quantity: 1}})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "wrong event")

	_, _, err = ReserveLines(eventID, types, []BookingLineInput{{TicketTypeID: tt.ID, Quantity: 0}})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "zero quantity")

	_, _, err = ReserveLines(eventID, types, []BookingLineInput{{TicketTypeID: tt.ID, Quantity: 4}})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "above per-user limit")

	inactive := newTestTicketType(eventID, 5, 1000)
	inactive.IsActive = false
	types[inactive.ID] = inactive
	_, _, err = ReserveLines(eventID, types, []BookingLineInput{{TicketTypeID: inactive.ID, Quantity: 1}})
	assert.True(t, apperrors.Is(err, apperrors.KindTicketTypeInactive))

	assert.Equal(t, 5, tt.AvailableQuantity, "no failure may move inventory")
}

func TestTicketUse(t *testing.T) {
	now := time.Now()

	ticket := &EventTicket{Status: TicketValid}
	require.NoError(t, ticket.Use(BookingConfirmed, now))
	assert.Equal(t, TicketUsed, ticket.Status)
	require.NotNil(t, ticket.UsedAt)
	assert.Equal(t, now, *ticket.UsedAt)

	err := ticket.Use(BookingConfirmed, now)
	assert.True(t, apperrors.Is(err, apperrors.KindAlreadyUsed))

	cancelled := &EventTicket{Status: TicketCancelled}
	err = cancelled.Use(BookingConfirmed, now)
	assert.True(t, apperrors.Is(err, apperrors.KindTicketNotUsable))

	pending := &EventTicket{Status: TicketValid}
	err = pending.Use(BookingPending, now)
	assert.True(t, apperrors.Is(err, apperrors.KindTicketNotUsable))
	assert.Equal(t, TicketValid, pending.Status)
}

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.False(t, BookingPending.IsTerminal())
	assert.True(t, BookingConfirmed.IsTerminal())
	assert.True(t, BookingCancelled.IsTerminal())
}
