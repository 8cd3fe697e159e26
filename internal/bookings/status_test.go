package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsValid(t *testing.T) {
	valid := []Status{
		StatusRequested, StatusAccepted, StatusDeclined,
		StatusCancelledHost, StatusCancelledGuest, StatusCancelledRequest,
		StatusCheckedIn, StatusCheckedOut, StatusNoShow,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "expected %s to be valid", s)
	}

	assert.False(t, Status("PENDING").IsValid())
	assert.False(t, Status("").IsValid())
	assert.False(t, Status("requested").IsValid())
}

func TestStatusIsActive(t *testing.T) {
	active := []Status{StatusRequested, StatusAccepted, StatusCheckedIn}
	for _, s := range active {
		assert.True(t, s.IsActive(), "expected %s to be active", s)
	}

	terminal := []Status{
		StatusDeclined, StatusCancelledHost, StatusCancelledGuest,
		StatusCancelledRequest, StatusCheckedOut, StatusNoShow,
	}
	for _, s := range terminal {
		assert.False(t, s.IsActive(), "expected %s to be terminal", s)
	}
}

func TestTransitionIsValid(t *testing.T) {
	valid := []Transition{
		TransitionAccept, TransitionDecline, TransitionCancel,
		TransitionCheckIn, TransitionCheckOut, TransitionNoShow,
	}
	for _, tr := range valid {
		assert.True(t, tr.IsValid(), "expected %s to be valid", tr)
	}

	assert.False(t, Transition("approve").IsValid())
	assert.False(t, Transition("").IsValid())
}
