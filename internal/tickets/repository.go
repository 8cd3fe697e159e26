package tickets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kerya/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Ticket types
	CreateTicketType(ctx context.Context, ticketType *EventTicketType) error
	GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*EventTicketType, error)
	ListTicketTypes(ctx context.Context, query TicketTypeListQuery) ([]EventTicketType, error)
	// UpdateTicketType locks the row, applies mutate to the fresh state and
	// persists, so reclamping sees a consistent sold count.
	UpdateTicketType(ctx context.Context, id uuid.UUID, mutate func(*EventTicketType) error) (*EventTicketType, error)
	DeleteTicketType(ctx context.Context, id uuid.UUID) error

	// CreateBookingWithReservation locks every referenced ticket type in id
	// order, validates and decrements inventory through ReserveLines, and
	// inserts the booking with its lines in the same transaction.
	CreateBookingWithReservation(ctx context.Context, booking *EventBooking, lines []BookingLineInput) error

	GetBookingByID(ctx context.Context, id uuid.UUID) (*EventBooking, error)
	GetBookingByReference(ctx context.Context, reference string) (*EventBooking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error)
	GetEventBookings(ctx context.Context, eventID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error)

	// ConfirmBooking locks the booking row. Already-confirmed bookings return
	// unchanged (idempotent); cancelled bookings fail. On first confirmation
	// the issue callback materializes one ticket per reserved unit and the
	// tickets are inserted atomically with the status flip.
	ConfirmBooking(ctx context.Context, id uuid.UUID, payment ConfirmBookingRequest, issue func(*EventBooking) ([]EventTicket, error)) (*EventBooking, error)

	// CancelBooking locks the booking row. Already-cancelled bookings return
	// unchanged (idempotent). Otherwise reserved quantities are restored to
	// the locked ticket types and any materialized tickets are cancelled.
	CancelBooking(ctx context.Context, id uuid.UUID) (*EventBooking, error)

	// UseTicket locks the ticket matching the code (QR code or ticket
	// number), applies mutate with the owning booking's status, and persists.
	UseTicket(ctx context.Context, code string, mutate func(*EventTicket, BookingStatus) error) (*EventTicket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// lockForUpdate adds a SELECT ... FOR UPDATE row lock to the query.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repository) CreateTicketType(ctx context.Context, ticketType *EventTicketType) error {
	if err := r.db.WithContext(ctx).Create(ticketType).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.FromIntegrity(err)
		}
		return fmt.Errorf("failed to create ticket type: %w", err)
	}
	return nil
}

func (r *repository) GetTicketTypeByID(ctx context.Context, id uuid.UUID) (*EventTicketType, error) {
	var ticketType EventTicketType
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("id = ?", id).
		First(&ticketType).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "ticket type not found")
		}
		return nil, err
	}
	return &ticketType, nil
}

func (r *repository) ListTicketTypes(ctx context.Context, query TicketTypeListQuery) ([]EventTicketType, error) {
	db := r.db.WithContext(ctx).Model(&EventTicketType{})
	if query.EventID != "" {
		db = db.Where("event_id = ?", query.EventID)
	}

	var types []EventTicketType
	if err := db.Order("price ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}
	return types, nil
}

func (r *repository) UpdateTicketType(ctx context.Context, id uuid.UUID, mutate func(*EventTicketType) error) (*EventTicketType, error) {
	var result *EventTicketType
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticketType EventTicketType
		err := lockForUpdate(tx).
			Where("id = ?", id).
			First(&ticketType).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "ticket type not found")
			}
			return fmt.Errorf("failed to lock ticket type: %w", err)
		}

		if err := mutate(&ticketType); err != nil {
			return err
		}

		if err := tx.Save(&ticketType).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.FromIntegrity(err)
			}
			return fmt.Errorf("failed to update ticket type: %w", err)
		}
		result = &ticketType
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) DeleteTicketType(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&EventTicketType{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ticket type: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "ticket type not found")
	}
	return nil
}

func (r *repository) CreateBookingWithReservation(ctx context.Context, booking *EventBooking, lines []BookingLineInput) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.TicketTypeID)
	}
	// Deterministic lock order across concurrent bookings avoids deadlock.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var types []EventTicketType
		err := lockForUpdate(tx).
			Where("id IN ?", ids).
			Order("id ASC").
			Find(&types).Error
		if err != nil {
			return fmt.Errorf("failed to lock ticket types: %w", err)
		}

		typesByID := make(map[uuid.UUID]*EventTicketType, len(types))
		for i := range types {
			typesByID[types[i].ID] = &types[i]
		}

		totalTickets, totalAmount, err := ReserveLines(booking.EventID, typesByID, lines)
		if err != nil {
			return err
		}

		booking.TotalTickets = totalTickets
		booking.TotalAmount = totalAmount
		booking.Status = BookingPending
		booking.Lines = make([]BookingLine, 0, len(lines))
		for _, line := range lines {
			booking.Lines = append(booking.Lines, BookingLine{
				TicketTypeID: line.TicketTypeID,
				Quantity:     line.Quantity,
				UnitPrice:    typesByID[line.TicketTypeID].Price,
			})
		}

		if err := tx.Create(booking).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.FromIntegrity(err)
			}
			return fmt.Errorf("failed to create event booking: %w", err)
		}

		for i := range types {
			err := tx.Model(&EventTicketType{}).
				Where("id = ?", types[i].ID).
				Update("available_quantity", types[i].AvailableQuantity).Error
			if err != nil {
				return fmt.Errorf("failed to reserve inventory: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*EventBooking, error) {
	var booking EventBooking
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Lines").
		Preload("Tickets").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetBookingByReference(ctx context.Context, reference string) (*EventBooking, error) {
	var booking EventBooking
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Lines").
		Preload("Tickets").
		Where("booking_reference = ?", reference).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "booking not found")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error) {
	base := r.db.WithContext(ctx).Model(&EventBooking{}).Where("user_id = ?", userID)
	return r.paginate(base, query)
}

func (r *repository) GetEventBookings(ctx context.Context, eventID uuid.UUID, query EventBookingListQuery) ([]EventBooking, int64, error) {
	base := r.db.WithContext(ctx).Model(&EventBooking{}).Where("event_id = ?", eventID)
	return r.paginate(base, query)
}

func (r *repository) paginate(base *gorm.DB, query EventBookingListQuery) ([]EventBooking, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	if query.Status != "" {
		base = base.Where("status = ?", query.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var bookings []EventBooking
	err := base.
		Preload("Event").
		Preload("Lines").
		Order("created_at DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *repository) ConfirmBooking(ctx context.Context, id uuid.UUID, payment ConfirmBookingRequest, issue func(*EventBooking) ([]EventTicket, error)) (*EventBooking, error) {
	var result *EventBooking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking EventBooking
		err := lockForUpdate(tx).
			Preload("Lines").
			Where("id = ?", id).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "booking not found")
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.Status == BookingConfirmed {
			result = &booking
			return nil
		}
		if booking.Status == BookingCancelled {
			return apperrors.New(apperrors.KindValidation, "cannot confirm a cancelled booking")
		}

		tickets, err := issue(&booking)
		if err != nil {
			return err
		}
		if len(tickets) > 0 {
			if err := tx.Create(&tickets).Error; err != nil {
				if isUniqueViolation(err) {
					return apperrors.FromIntegrity(err)
				}
				return fmt.Errorf("failed to materialize tickets: %w", err)
			}
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

		if err := tx.Model(&EventBooking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
			"status":            booking.Status,
			"confirmed_at":      booking.ConfirmedAt,
			"payment_method":    booking.PaymentMethod,
			"payment_reference": booking.PaymentReference,
		}).Error; err != nil {
			return fmt.Errorf("failed to confirm booking: %w", err)
		}

		booking.Tickets = tickets
		result = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) CancelBooking(ctx context.Context, id uuid.UUID) (*EventBooking, error) {
	var result *EventBooking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking EventBooking
		err := lockForUpdate(tx).
			Preload("Lines").
			Where("id = ?", id).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "booking not found")
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.Status == BookingCancelled {
			result = &booking
			return nil
		}

		// Restore reserved quantities from the stored lines, clamped by
		// Release so availability never exceeds the total.
		ids := make([]uuid.UUID, 0, len(booking.Lines))
		quantities := make(map[uuid.UUID]int, len(booking.Lines))
		for _, line := range booking.Lines {
			ids = append(ids, line.TicketTypeID)
			quantities[line.TicketTypeID] += line.Quantity
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		var types []EventTicketType
		err = lockForUpdate(tx).
			Where("id IN ?", ids).
			Order("id ASC").
			Find(&types).Error
		if err != nil {
			return fmt.Errorf("failed to lock ticket types: %w", err)
		}
		for i := range types {
			types[i].Release(quantities[types[i].ID])
			err := tx.Model(&EventTicketType{}).
				Where("id = ?", types[i].ID).
				Update("available_quantity", types[i].AvailableQuantity).Error
			if err != nil {
				return fmt.Errorf("failed to restore inventory: %w", err)
			}
		}

		err = tx.Model(&EventTicket{}).
			Where("booking_id = ?", booking.ID).
			Update("status", TicketCancelled).Error
		if err != nil {
			return fmt.Errorf("failed to cancel tickets: %w", err)
		}

		now := time.Now()
		booking.Status = BookingCancelled
		booking.CancelledAt = &now
		if err := tx.Model(&EventBooking{}).Where("id = ?", booking.ID).Updates(map[string]interface{}{
			"status":       booking.Status,
			"cancelled_at": booking.CancelledAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		result = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *repository) UseTicket(ctx context.Context, code string, mutate func(*EventTicket, BookingStatus) error) (*EventTicket, error) {
	var result *EventTicket
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket EventTicket
		err := lockForUpdate(tx).
			Preload("Booking").
			Preload("Booking.Event").
			Preload("TicketType").
			Where("qr_code = ? OR ticket_number = ?", code, code).
			First(&ticket).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "ticket not found")
			}
			return fmt.Errorf("failed to lock ticket: %w", err)
		}

		var bookingStatus BookingStatus
		if ticket.Booking != nil {
			bookingStatus = ticket.Booking.Status
		}
		if err := mutate(&ticket, bookingStatus); err != nil {
			return err
		}

		if err := tx.Model(&EventTicket{}).Where("id = ?", ticket.ID).Updates(map[string]interface{}{
			"status":  ticket.Status,
			"used_at": ticket.UsedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		result = &ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// isUniqueViolation detects postgres unique constraint errors (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
