package access

import (
	"kerya/internal/shared/apperrors"
	"kerya/internal/users"

	"github.com/google/uuid"
)

// Actor is the authenticated identity acting on a resource. It is built by
// the auth middleware from JWT claims; the guard never authenticates, it only
// authorizes.
type Actor struct {
	ID   uuid.UUID
	Role users.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == users.RoleAdmin
}

// RequireListingOwner allows the listing owner or an admin.
func RequireListingOwner(actor Actor, ownerID uuid.UUID) error {
	if actor.IsAdmin() || actor.ID == ownerID {
		return nil
	}
	return apperrors.New(apperrors.KindPermission, "only the listing owner can perform this action")
}

// RequireBookingGuest allows the guest who made the booking or an admin.
func RequireBookingGuest(actor Actor, guestID uuid.UUID) error {
	if actor.IsAdmin() || actor.ID == guestID {
		return nil
	}
	return apperrors.New(apperrors.KindPermission, "only the guest who booked can perform this action")
}

// RequireBookingParty allows the guest, the listing owner, or an admin.
func RequireBookingParty(actor Actor, guestID, ownerID uuid.UUID) error {
	if actor.IsAdmin() || actor.ID == guestID || actor.ID == ownerID {
		return nil
	}
	return apperrors.New(apperrors.KindPermission, "only the host or guest of this booking can perform this action")
}
