package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindNotFound, "booking not found")
	assert.Equal(t, KindNotFound, KindOf(err))

	wrapped := fmt.Errorf("handling request: %w", err)
	assert.Equal(t, KindNotFound, KindOf(wrapped))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindPermission, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindAvailabilityConflict, http.StatusConflict},
		{KindInsufficientInventory, http.StatusConflict},
		{KindTicketTypeInactive, http.StatusConflict},
		{KindInactiveBooking, http.StatusConflict},
		{KindAlreadyUsed, http.StatusConflict},
		{KindTicketNotUsable, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(New(tt.kind, "x")), string(tt.kind))
	}
}

func TestFromIntegrity(t *testing.T) {
	cause := errors.New(`duplicate key value violates unique constraint "uq_ticket_number"`)
	err := FromIntegrity(cause)

	assert.Equal(t, KindValidation, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unique constraint")
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("row locked")
	err := Wrap(KindInactiveBooking, "booking is inactive", cause)

	assert.True(t, Is(err, KindInactiveBooking))
	assert.Equal(t, cause, errors.Unwrap(err))
}
