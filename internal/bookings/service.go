package bookings

import (
	"context"
	"fmt"
	"time"

	"kerya/internal/access"
	"kerya/internal/listings"
	"kerya/internal/shared/apperrors"

	"github.com/google/uuid"
)

// ListingService is the slice of the listings service the booking engine
// needs (interface here to avoid a circular dependency).
type ListingService interface {
	GetListingByID(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
}

// Notifier publishes booking lifecycle events. Optional; a nil notifier
// disables publishing.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *Booking)
	BookingTransitioned(ctx context.Context, booking *Booking, transition Transition)
}

// Service interface defines the contract for the lodging booking lifecycle.
type Service interface {
	CreateBooking(ctx context.Context, actor access.Actor, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error)
	GetMyBookings(ctx context.Context, actor access.Actor, query BookingListQuery) ([]Booking, int64, error)
	GetListingBookings(ctx context.Context, actor access.Actor, listingID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)

	// ApplyTransition dispatches over the closed transition enum.
	ApplyTransition(ctx context.Context, actor access.Actor, id uuid.UUID, transition Transition) (*Booking, error)

	Accept(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error)
	Decline(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error)
	Cancel(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error)
	CheckIn(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error)
	CheckOut(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error)
	NoShow(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error)

	SetNotifier(notifier Notifier)
}

type service struct {
	repo           Repository
	listingService ListingService
	notifier       Notifier
}

func NewService(repo Repository, listingService ListingService) Service {
	return &service{
		repo:           repo,
		listingService: listingService,
	}
}

func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

const dateLayout = "2006-01-02"

// CreateBooking books a lodging listing. House bookings start REQUESTED and
// wait for host approval; hotel bookings confirm immediately.
func (s *service) CreateBooking(ctx context.Context, actor access.Actor, req CreateBookingRequest) (*Booking, error) {
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid listing id")
	}
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	listing, err := s.listingService.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.Type.IsLodging() {
		return nil, apperrors.Newf(apperrors.KindValidation, "listing of type %s cannot be booked by date range", listing.Type)
	}
	if listing.OwnerID == actor.ID {
		return nil, apperrors.New(apperrors.KindValidation, "hosts cannot book their own listing")
	}

	currency := req.Currency
	if currency == "" {
		currency = listing.Currency
	}

	booking := &Booking{
		ListingID: listingID,
		GuestID:   actor.ID,
		StartDate: startDate,
		EndDate:   endDate,
		Currency:  currency,
		Status:    StatusRequested,
	}

	// Hotels auto-confirm; houses wait for the host's decision.
	if listing.Type == listings.TypeHotel {
		now := time.Now()
		booking.Status = StatusAccepted
		booking.DecisionAt = &now
	}

	if err := s.repo.CreateIfAvailable(ctx, booking); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, booking)
	}
	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireBookingParty(actor, booking.GuestID, booking.Listing.OwnerID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) GetMyBookings(ctx context.Context, actor access.Actor, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetGuestBookings(ctx, actor.ID, query)
}

func (s *service) GetListingBookings(ctx context.Context, actor access.Actor, listingID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	listing, err := s.listingService.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	if err := access.RequireListingOwner(actor, listing.OwnerID); err != nil {
		return nil, 0, err
	}
	return s.repo.GetListingBookings(ctx, listingID, query)
}

func (s *service) ApplyTransition(ctx context.Context, actor access.Actor, id uuid.UUID, transition Transition) (*Booking, error) {
	switch transition {
	case TransitionAccept:
		return s.Accept(ctx, actor, id)
	case TransitionDecline:
		return s.Decline(ctx, actor, id)
	case TransitionCancel:
		return s.Cancel(ctx, actor, id)
	case TransitionCheckIn:
		return s.CheckIn(ctx, actor, id)
	case TransitionCheckOut:
		return s.CheckOut(ctx, actor, id)
	case TransitionNoShow:
		return s.NoShow(ctx, actor, id)
	default:
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown transition %q", transition)
	}
}

func (s *service) Accept(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error) {
	return s.hostTransition(ctx, actor, id, TransitionAccept, func(b *Booking) error {
		return b.Accept(time.Now())
	})
}

func (s *service) Decline(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error) {
	return s.hostTransition(ctx, actor, id, TransitionDecline, func(b *Booking) error {
		return b.Decline(time.Now())
	})
}

// Cancel lets the booking model resolve the cancelling party from the actor.
func (s *service) Cancel(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error) {
	existing, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	hostID := existing.Listing.OwnerID
	if err := access.RequireBookingParty(actor, existing.GuestID, hostID); err != nil {
		return nil, err
	}

	booking, err := s.repo.Transition(ctx, id, func(b *Booking) error {
		return b.Cancel(actor.ID, hostID, time.Now())
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BookingTransitioned(ctx, booking, TransitionCancel)
	}
	return booking, nil
}

func (s *service) CheckIn(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error) {
	return s.hostTransition(ctx, actor, id, TransitionCheckIn, func(b *Booking) error {
		return b.CheckIn(time.Now())
	})
}

func (s *service) CheckOut(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error) {
	return s.hostTransition(ctx, actor, id, TransitionCheckOut, func(b *Booking) error {
		return b.CheckOut(time.Now())
	})
}

func (s *service) NoShow(ctx context.Context, actor access.Actor, id uuid.UUID) (*Booking, error) {
	return s.hostTransition(ctx, actor, id, TransitionNoShow, func(b *Booking) error {
		return b.NoShow()
	})
}

// hostTransition runs a host-only lifecycle operation: fetch, authorize
// against the listing owner, then apply the mutation under the booking row
// lock.
func (s *service) hostTransition(ctx context.Context, actor access.Actor, id uuid.UUID, transition Transition, mutate func(*Booking) error) (*Booking, error) {
	existing, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireListingOwner(actor, existing.Listing.OwnerID); err != nil {
		return nil, err
	}

	booking, err := s.repo.Transition(ctx, id, mutate)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.BookingTransitioned(ctx, booking, transition)
	}
	return booking, nil
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Wrap(apperrors.KindValidation, "invalid start_date", err)
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Wrap(apperrors.KindValidation, "invalid end_date", err)
	}
	if !endDate.After(startDate) {
		return time.Time{}, time.Time{}, apperrors.New(apperrors.KindValidation, fmt.Sprintf("end_date %s must be after start_date %s", end, start))
	}
	return startDate, endDate, nil
}
