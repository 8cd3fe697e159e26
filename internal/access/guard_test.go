package access

import (
	"testing"

	"kerya/internal/shared/apperrors"
	"kerya/internal/users"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequireListingOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	assert.NoError(t, RequireListingOwner(Actor{ID: owner, Role: users.RoleHost}, owner))
	assert.NoError(t, RequireListingOwner(Actor{ID: stranger, Role: users.RoleAdmin}, owner))

	err := RequireListingOwner(Actor{ID: stranger, Role: users.RoleHost}, owner)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))
}

func TestRequireListingOwnerRejectsGuest(t *testing.T) {
	// A guest on the booking must not be able to invoke host-only transitions.
	owner := uuid.New()
	guest := uuid.New()

	err := RequireListingOwner(Actor{ID: guest, Role: users.RoleVisitor}, owner)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))
}

func TestRequireBookingGuest(t *testing.T) {
	guest := uuid.New()

	assert.NoError(t, RequireBookingGuest(Actor{ID: guest, Role: users.RoleVisitor}, guest))

	err := RequireBookingGuest(Actor{ID: uuid.New(), Role: users.RoleVisitor}, guest)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))
}

func TestRequireBookingParty(t *testing.T) {
	guest := uuid.New()
	owner := uuid.New()

	assert.NoError(t, RequireBookingParty(Actor{ID: guest, Role: users.RoleVisitor}, guest, owner))
	assert.NoError(t, RequireBookingParty(Actor{ID: owner, Role: users.RoleHost}, guest, owner))
	assert.NoError(t, RequireBookingParty(Actor{ID: uuid.New(), Role: users.RoleAdmin}, guest, owner))

	err := RequireBookingParty(Actor{ID: uuid.New(), Role: users.RoleVisitor}, guest, owner)
	assert.True(t, apperrors.Is(err, apperrors.KindPermission))
}
