package bookings

import (
	"time"

	"kerya/internal/listings"
	"kerya/internal/shared/apperrors"
	"kerya/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is a guest's reservation of a lodging listing for a half-open date
// range [StartDate, EndDate). Nights, PriceTotal and IsActive are derived and
// recomputed on every persist; they are never trusted from caller input.
type Booking struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ListingID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"listing_id"`
	GuestID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"guest_id"`
	StartDate  time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time       `gorm:"type:date;not null" json:"end_date"`
	Nights     int             `gorm:"not null" json:"nights"`
	PriceTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price_total"`
	Currency   string          `gorm:"size:10;default:'DZD'" json:"currency"`
	Status     Status          `gorm:"type:varchar(20);default:'REQUESTED'" json:"status"`
	IsActive   bool            `gorm:"index;default:true" json:"is_active"`

	DecisionAt  *time.Time `json:"decision_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CheckInAt   *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt  *time.Time `json:"check_out_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Listing *listings.Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE;"`
	Guest   *users.User       `json:"guest,omitempty" gorm:"foreignKey:GuestID;constraint:OnDelete:CASCADE;"`
}

func (Booking) TableName() string {
	return "bookings"
}

// ComputeNights derives the stay length from the half-open date range.
func (b *Booking) ComputeNights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// Recompute refreshes every derived field from current state. Called on every
// persist so a stale caller can never flip IsActive or PriceTotal directly.
func (b *Booking) Recompute(nightlyPrice decimal.Decimal) {
	b.Nights = b.ComputeNights()
	b.PriceTotal = nightlyPrice.Mul(decimal.NewFromInt(int64(b.Nights)))
	b.IsActive = b.Status.IsActive()
}

// EnsureActive is the single authoritative transition guard.
func (b *Booking) EnsureActive() error {
	if !b.IsActive {
		return apperrors.New(apperrors.KindInactiveBooking, "this booking is inactive and cannot be modified")
	}
	return nil
}

// Accept moves a requested booking to ACCEPTED and records the decision time.
func (b *Booking) Accept(now time.Time) error {
	if err := b.EnsureActive(); err != nil {
		return err
	}
	if b.Status != StatusRequested {
		return apperrors.Newf(apperrors.KindValidation, "cannot accept a booking in status %s", b.Status)
	}
	b.Status = StatusAccepted
	b.DecisionAt = &now
	return nil
}

// Decline moves a requested booking to the terminal DECLINED status.
func (b *Booking) Decline(now time.Time) error {
	if err := b.EnsureActive(); err != nil {
		return err
	}
	if b.Status != StatusRequested {
		return apperrors.Newf(apperrors.KindValidation, "cannot decline a booking in status %s", b.Status)
	}
	b.Status = StatusDeclined
	b.DecisionAt = &now
	return nil
}

// Cancel resolves the cancelling party from the actor: a REQUESTED booking may
// only be cancelled by its guest; afterwards either party may cancel, each to
// its own terminal status.
func (b *Booking) Cancel(actorID, hostID uuid.UUID, now time.Time) error {
	if err := b.EnsureActive(); err != nil {
		return err
	}
	switch {
	case b.Status == StatusRequested:
		if actorID != b.GuestID {
			return apperrors.New(apperrors.KindPermission, "only the guest can cancel a requested booking")
		}
		b.Status = StatusCancelledRequest
	case actorID == hostID:
		b.Status = StatusCancelledHost
	case actorID == b.GuestID:
		b.Status = StatusCancelledGuest
	default:
		return apperrors.New(apperrors.KindPermission, "only the host or guest can cancel this booking")
	}
	b.CancelledAt = &now
	return nil
}

// CheckIn marks the guest as arrived.
func (b *Booking) CheckIn(now time.Time) error {
	if err := b.EnsureActive(); err != nil {
		return err
	}
	if b.Status != StatusAccepted {
		return apperrors.Newf(apperrors.KindValidation, "cannot check in a booking in status %s", b.Status)
	}
	b.Status = StatusCheckedIn
	b.CheckInAt = &now
	return nil
}

// CheckOut closes the stay. Terminal.
func (b *Booking) CheckOut(now time.Time) error {
	if err := b.EnsureActive(); err != nil {
		return err
	}
	if b.Status != StatusCheckedIn {
		return apperrors.Newf(apperrors.KindValidation, "cannot check out a booking in status %s", b.Status)
	}
	b.Status = StatusCheckedOut
	b.CheckOutAt = &now
	return nil
}

// NoShow marks a live booking whose guest never arrived. Terminal.
func (b *Booking) NoShow() error {
	if err := b.EnsureActive(); err != nil {
		return err
	}
	b.Status = StatusNoShow
	return nil
}

// CreateBookingRequest is the payload for booking a lodging listing.
type CreateBookingRequest struct {
	ListingID string `json:"listing_id" binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required"` // 2006-01-02
	EndDate   string `json:"end_date" binding:"required"`   // 2006-01-02
	Currency  string `json:"currency" binding:"omitempty,max=10"`
}

// TransitionRequest names a lifecycle operation on an existing booking.
type TransitionRequest struct {
	Transition string `json:"transition" binding:"required,oneof=accept decline cancel check_in check_out no_show"`
}

// BookingListQuery filters booking lookups.
type BookingListQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status    string `form:"status"`
	ListingID string `form:"listing_id" binding:"omitempty,uuid"`
}
