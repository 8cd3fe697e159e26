package tickets

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"kerya/internal/access"
	"kerya/internal/listings"
	"kerya/internal/shared/apperrors"

	"github.com/google/uuid"
)

// ListingService is the slice of the listings service the ticket engine
// needs (interface here to avoid a circular dependency).
type ListingService interface {
	GetListingByID(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
}

// Notifier publishes ticket lifecycle events. Optional; a nil notifier
// disables publishing.
type Notifier interface {
	EventBookingCreated(ctx context.Context, booking *EventBooking)
	EventBookingConfirmed(ctx context.Context, booking *EventBooking)
	EventBookingCancelled(ctx context.Context, booking *EventBooking)
	TicketUsed(ctx context.Context, ticket *EventTicket)
}

// Service interface defines the contract for ticket inventory, reservation
// and fulfillment.
type Service interface {
	// Ticket types
	CreateTicketType(ctx context.Context, actor access.Actor, req CreateTicketTypeRequest) (*EventTicketType, error)
	UpdateTicketType(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateTicketTypeRequest) (*EventTicketType, error)
	GetTicketType(ctx context.Context, id uuid.UUID) (*EventTicketType, error)
	ListTicketTypes(ctx context.Context, query TicketTypeListQuery) ([]EventTicketType, error)
	DeleteTicketType(ctx context.Context, actor access.Actor, id uuid.UUID) error

	// Bookings
	CreateBooking(ctx context.Context, actor access.Actor, req CreateEventBookingRequest) (*EventBooking, error)
	GetBooking(ctx context.Context, actor access.Actor, id uuid.UUID) (*EventBooking, error)
	GetBookingByReference(ctx context.Context, actor access.Actor, reference string) (*EventBooking, error)
	ConfirmBooking(ctx context.Context, actor access.Actor, id uuid.UUID, req ConfirmBookingRequest) (*EventBooking, error)
	CancelBooking(ctx context.Context, actor access.Actor, id uuid.UUID) (*EventBooking, error)
	GetMyBookings(ctx context.Context, actor access.Actor, query EventBookingListQuery) ([]EventBooking, int64, error)
	GetEventBookings(ctx context.Context, actor access.Actor, eventID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error)

	// Gate scanning
	UseTicket(ctx context.Context, actor access.Actor, code string) (*EventTicket, error)

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

const defaultMaxPerUser = 10

func (s *service) CreateTicketType(ctx context.Context, actor access.Actor, req CreateTicketTypeRequest) (*EventTicketType, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid event id")
	}

	event, err := s.requireOwnedEvent(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	if req.Price.IsNegative() {
		return nil, apperrors.New(apperrors.KindValidation, "price cannot be negative")
	}

	ticketType := &EventTicketType{
		EventID:           eventID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Currency:          req.Currency,
		TotalQuantity:     req.TotalQuantity,
		AvailableQuantity: req.TotalQuantity,
		MaxPerUser:        req.MaxPerUser,
		IsActive:          true,
	}
	if ticketType.Currency == "" {
		ticketType.Currency = event.Currency
	}
	if ticketType.MaxPerUser == 0 {
		ticketType.MaxPerUser = defaultMaxPerUser
	}
	if req.IsActive != nil {
		ticketType.IsActive = *req.IsActive
	}

	if err := s.repo.CreateTicketType(ctx, ticketType); err != nil {
		return nil, err
	}
	return ticketType, nil
}

func (s *service) UpdateTicketType(ctx context.Context, actor access.Actor, id uuid.UUID, req UpdateTicketTypeRequest) (*EventTicketType, error) {
	existing, err := s.repo.GetTicketTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireOwnedEvent(ctx, actor, existing.EventID); err != nil {
		return nil, err
	}

	return s.repo.UpdateTicketType(ctx, id, func(tt *EventTicketType) error {
		if req.Name != nil {
			tt.Name = *req.Name
		}
		if req.Description != nil {
			tt.Description = *req.Description
		}
		if req.Price != nil {
			if req.Price.IsNegative() {
				return apperrors.New(apperrors.KindValidation, "price cannot be negative")
			}
			tt.Price = *req.Price
		}
		if req.MaxPerUser != nil {
			tt.MaxPerUser = *req.MaxPerUser
		}
		if req.IsActive != nil {
			tt.IsActive = *req.IsActive
		}
		if req.TotalQuantity != nil {
			if err := tt.ApplyTotalQuantity(*req.TotalQuantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) GetTicketType(ctx context.Context, id uuid.UUID) (*EventTicketType, error) {
	return s.repo.GetTicketTypeByID(ctx, id)
}

func (s *service) ListTicketTypes(ctx context.Context, query TicketTypeListQuery) ([]EventTicketType, error) {
	return s.repo.ListTicketTypes(ctx, query)
}

func (s *service) DeleteTicketType(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	existing, err := s.repo.GetTicketTypeByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.requireOwnedEvent(ctx, actor, existing.EventID); err != nil {
		return err
	}
	if existing.SoldQuantity() > 0 {
		return apperrors.New(apperrors.KindValidation, "cannot delete a ticket type with sold tickets")
	}
	return s.repo.DeleteTicketType(ctx, id)
}

func (s *service) CreateBooking(ctx context.Context, actor access.Actor, req CreateEventBookingRequest) (*EventBooking, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid event id")
	}

	event, err := s.listingService.GetListingByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Type != listings.TypeEvent {
		return nil, apperrors.New(apperrors.KindValidation, "provided listing is not an event")
	}
	if !event.IsBookable() {
		return nil, apperrors.New(apperrors.KindValidation, "event is not open for booking")
	}

	lines := make([]BookingLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		typeID, err := uuid.Parse(line.TicketTypeID)
		if err != nil {
			return nil, apperrors.New(apperrors.KindValidation, "invalid ticket type id")
		}
		lines = append(lines, BookingLineInput{TicketTypeID: typeID, Quantity: line.Quantity})
	}

	booking := &EventBooking{
		EventID:          eventID,
		UserID:           actor.ID,
		BookingReference: generateBookingReference(time.Now()),
		Currency:         event.Currency,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		PaymentMethod:    req.PaymentMethod,
	}

	if err := s.repo.CreateBookingWithReservation(ctx, booking, lines); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.EventBookingCreated(ctx, booking)
	}
	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, actor access.Actor, id uuid.UUID) (*EventBooking, error) {
	booking, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireBookingParty(actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// GetBookingByReference resolves a booking by its human-readable reference,
// for lookups from a confirmation email or a support conversation.
func (s *service) GetBookingByReference(ctx context.Context, actor access.Actor, reference string) (*EventBooking, error) {
	if reference == "" {
		return nil, apperrors.New(apperrors.KindValidation, "booking reference is required")
	}
	booking, err := s.repo.GetBookingByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if err := s.requireBookingParty(actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) ConfirmBooking(ctx context.Context, actor access.Actor, id uuid.UUID, req ConfirmBookingRequest) (*EventBooking, error) {
	existing, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.RequireBookingGuest(actor, existing.UserID); err != nil {
		return nil, err
	}

	booking, err := s.repo.ConfirmBooking(ctx, id, req, func(b *EventBooking) ([]EventTicket, error) {
		return materializeTickets(b, time.Now())
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.EventBookingConfirmed(ctx, booking)
	}
	return booking, nil
}

func (s *service) CancelBooking(ctx context.Context, actor access.Actor, id uuid.UUID) (*EventBooking, error) {
	existing, err := s.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireBookingParty(actor, existing); err != nil {
		return nil, err
	}

	booking, err := s.repo.CancelBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.EventBookingCancelled(ctx, booking)
	}
	return booking, nil
}

func (s *service) GetMyBookings(ctx context.Context, actor access.Actor, query EventBookingListQuery) ([]EventBooking, int64, error) {
	return s.repo.GetUserBookings(ctx, actor.ID, query)
}

func (s *service) GetEventBookings(ctx context.Context, actor access.Actor, eventID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error) {
	if _, err := s.requireOwnedEvent(ctx, actor, eventID); err != nil {
		return nil, 0, err
	}
	return s.repo.GetEventBookings(ctx, eventID, query)
}

// UseTicket marks a scanned ticket as used. Only the event's host (or an
// admin) may scan; the ownership check runs inside the same transaction as
// the status flip.
func (s *service) UseTicket(ctx context.Context, actor access.Actor, code string) (*EventTicket, error) {
	ticket, err := s.repo.UseTicket(ctx, code, func(t *EventTicket, bookingStatus BookingStatus) error {
		if t.Booking == nil || t.Booking.Event == nil {
			return apperrors.New(apperrors.KindInternal, "ticket booking is missing its event")
		}
		if err := access.RequireListingOwner(actor, t.Booking.Event.OwnerID); err != nil {
			return err
		}
		return t.Use(bookingStatus, time.Now())
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.TicketUsed(ctx, ticket)
	}
	return ticket, nil
}

func (s *service) requireOwnedEvent(ctx context.Context, actor access.Actor, eventID uuid.UUID) (*listings.Listing, error) {
	event, err := s.listingService.GetListingByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Type != listings.TypeEvent {
		return nil, apperrors.New(apperrors.KindValidation, "provided listing is not an event")
	}
	if err := access.RequireListingOwner(actor, event.OwnerID); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) requireBookingParty(actor access.Actor, booking *EventBooking) error {
	ownerID := uuid.Nil
	if booking.Event != nil {
		ownerID = booking.Event.OwnerID
	}
	return access.RequireBookingParty(actor, booking.UserID, ownerID)
}

// materializeTickets issues one ticket per reserved unit, with holder info
// copied from the booking's customer fields.
func materializeTickets(booking *EventBooking, now time.Time) ([]EventTicket, error) {
	if len(booking.Lines) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "booking has no reserved lines to issue tickets from")
	}

	tickets := make([]EventTicket, 0, booking.TotalTickets)
	for _, line := range booking.Lines {
		for i := 0; i < line.Quantity; i++ {
			number := generateTicketNumber(booking.EventID)
			tickets = append(tickets, EventTicket{
				BookingID:    booking.ID,
				TicketTypeID: line.TicketTypeID,
				TicketNumber: number,
				QRCode:       generateQRCode(number, booking.BookingReference, now),
				HolderName:   booking.CustomerName,
				HolderEmail:  booking.CustomerEmail,
				Price:        line.UnitPrice,
				Status:       TicketValid,
			})
		}
	}
	return tickets, nil
}

// generateBookingReference builds a human-readable reference: EVT-YYYYMMDD-XXXX.
func generateBookingReference(now time.Time) string {
	return fmt.Sprintf("EVT-%s-%04d", now.Format("20060102"), randomInt(10000))
}

// generateTicketNumber builds a unique ticket identifier: TKT-EVENTID-XXXXXX.
func generateTicketNumber(eventID uuid.UUID) string {
	id := eventID.String()
	return fmt.Sprintf("TKT-%s-%06d", id[len(id)-6:], randomInt(1000000))
}

// generateQRCode derives the scannable code from the ticket identity.
func generateQRCode(ticketNumber, bookingReference string, now time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%s-%d", ticketNumber, bookingReference, now.UnixNano())))
	return hex.EncodeToString(sum[:])[:32]
}

func randomInt(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return time.Now().UnixNano() % max
	}
	return n.Int64()
}
