package tickets

import (
	"time"

	"kerya/internal/listings"
	"kerya/internal/shared/apperrors"
	"kerya/internal/users"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTicketType is a priced admission category for an event listing (VIP,
// General, Early Bird). AvailableQuantity is the single piece of contended
// state in the system and must only move through Reserve, Release and
// ApplyTotalQuantity under a row lock.
type EventTicketType struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID     uuid.UUID       `gorm:"type:uuid;index;not null;uniqueIndex:idx_ticket_types_event_name" json:"event_id"`
	Name        string          `gorm:"size:100;not null;uniqueIndex:idx_ticket_types_event_name" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency    string          `gorm:"size:10;default:'DZD'" json:"currency"`

	TotalQuantity     int `gorm:"not null" json:"total_quantity"`
	AvailableQuantity int `gorm:"not null" json:"available_quantity"`
	MaxPerUser        int `gorm:"default:10" json:"max_per_user"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Event *listings.Listing `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
}

func (EventTicketType) TableName() string {
	return "event_ticket_types"
}

// IsAvailable reports whether the type can currently be sold.
func (t *EventTicketType) IsAvailable() bool {
	return t.IsActive && t.AvailableQuantity > 0
}

// SoldQuantity is derived from the quantity delta, never stored.
func (t *EventTicketType) SoldQuantity() int {
	return t.TotalQuantity - t.AvailableQuantity
}

// Reserve decrements availability for one line. The caller must hold the row
// lock.
func (t *EventTicketType) Reserve(quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindValidation, "quantity must be positive")
	}
	if !t.IsActive {
		return apperrors.Newf(apperrors.KindTicketTypeInactive, "ticket type '%s' is not available", t.Name)
	}
	if quantity > t.AvailableQuantity {
		return apperrors.Newf(apperrors.KindInsufficientInventory,
			"requested quantity %d exceeds available %d for '%s'", quantity, t.AvailableQuantity, t.Name)
	}
	t.AvailableQuantity -= quantity
	return nil
}

// Release returns quantity to the pool, clamped so availability never exceeds
// the total. The caller must hold the row lock.
func (t *EventTicketType) Release(quantity int) {
	if quantity <= 0 {
		return
	}
	t.AvailableQuantity += quantity
	if t.AvailableQuantity > t.TotalQuantity {
		t.AvailableQuantity = t.TotalQuantity
	}
}

// ApplyTotalQuantity changes the capacity and reclamps availability so that
// sold units are preserved: available = max(0, total - sold).
func (t *EventTicketType) ApplyTotalQuantity(total int) error {
	if total < 0 {
		return apperrors.New(apperrors.KindValidation, "total_quantity cannot be negative")
	}
	sold := t.SoldQuantity()
	t.TotalQuantity = total
	t.AvailableQuantity = total - sold
	if t.AvailableQuantity < 0 {
		t.AvailableQuantity = 0
	}
	return nil
}

// BookingLineInput is one requested (ticket type, quantity) pair.
type BookingLineInput struct {
	TicketTypeID uuid.UUID
	Quantity     int
}

// ReserveLines validates every line against the locked ticket types and only
// then decrements inventory, so a failing line never leaves a partial
// reservation. Returns the derived totals for the booking row.
func ReserveLines(eventID uuid.UUID, types map[uuid.UUID]*EventTicketType, lines []BookingLineInput) (int, decimal.Decimal, error) {
	if len(lines) == 0 {
		return 0, decimal.Zero, apperrors.New(apperrors.KindValidation, "at least one ticket line is required")
	}

	totalTickets := 0
	totalAmount := decimal.Zero
	requested := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		tt, ok := types[line.TicketTypeID]
		if !ok {
			return 0, decimal.Zero, apperrors.Newf(apperrors.KindNotFound, "ticket type %s not found", line.TicketTypeID)
		}
		if tt.EventID != eventID {
			return 0, decimal.Zero, apperrors.Newf(apperrors.KindValidation, "ticket type %s does not belong to the given event", tt.ID)
		}
		if line.Quantity <= 0 {
			return 0, decimal.Zero, apperrors.New(apperrors.KindValidation, "quantity must be positive")
		}
		if !tt.IsActive {
			return 0, decimal.Zero, apperrors.Newf(apperrors.KindTicketTypeInactive, "ticket type '%s' is not available", tt.Name)
		}
		requested[tt.ID] += line.Quantity
		totalTickets += line.Quantity
		totalAmount = totalAmount.Add(tt.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	// Limits apply to the summed quantity per type, so splitting a request
	// across duplicate lines cannot pass what a single line would fail.
	for id, quantity := range requested {
		tt := types[id]
		if quantity > tt.AvailableQuantity {
			return 0, decimal.Zero, apperrors.Newf(apperrors.KindInsufficientInventory,
				"requested quantity %d exceeds available %d for '%s'", quantity, tt.AvailableQuantity, tt.Name)
		}
		if quantity > tt.MaxPerUser {
			return 0, decimal.Zero, apperrors.Newf(apperrors.KindValidation,
				"requested quantity %d exceeds per-user limit %d for '%s'", quantity, tt.MaxPerUser, tt.Name)
		}
	}

	for id, quantity := range requested {
		if err := types[id].Reserve(quantity); err != nil {
			return 0, decimal.Zero, err
		}
	}
	return totalTickets, totalAmount, nil
}

// EventBooking is a ticket purchase transaction covering one or more lines.
type EventBooking struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID uuid.UUID `gorm:"type:uuid;index;not null" json:"event_id"`
	UserID  uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`

	BookingReference string          `gorm:"size:20;uniqueIndex;not null" json:"booking_reference"`
	TotalTickets     int             `gorm:"not null" json:"total_tickets"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Currency         string          `gorm:"size:10;default:'DZD'" json:"currency"`

	CustomerName  string `gorm:"size:200;not null" json:"customer_name"`
	CustomerEmail string `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone"`

	Status BookingStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	PaymentMethod    string `gorm:"size:50" json:"payment_method"`
	PaymentReference string `gorm:"size:100" json:"payment_reference"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	// Relationships
	Event   *listings.Listing `json:"event,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
	User    *users.User       `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Lines   []BookingLine     `json:"lines,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	Tickets []EventTicket     `json:"tickets,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

func (EventBooking) TableName() string {
	return "event_bookings"
}

// BookingLine is the durable record of one reserved (ticket type, quantity)
// pair, used to materialize tickets on confirmation and to restore inventory
// on cancellation.
type BookingLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"booking_id"`
	TicketTypeID uuid.UUID       `gorm:"type:uuid;index;not null" json:"ticket_type_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`

	CreatedAt time.Time `json:"created_at"`

	TicketType *EventTicketType `json:"ticket_type,omitempty" gorm:"foreignKey:TicketTypeID;constraint:OnDelete:CASCADE;"`
}

func (BookingLine) TableName() string {
	return "event_booking_lines"
}

// EventTicket is an individual issued admission, traceable by ticket number or
// QR code.
type EventTicket struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID    uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	TicketTypeID uuid.UUID `gorm:"type:uuid;index;not null" json:"ticket_type_id"`

	TicketNumber string `gorm:"size:30;uniqueIndex;not null" json:"ticket_number"`
	QRCode       string `gorm:"size:100;uniqueIndex;not null" json:"qr_code"`

	HolderName  string `gorm:"size:200" json:"holder_name"`
	HolderEmail string `gorm:"size:255" json:"holder_email"`

	// Price is snapshotted from the booking line at issue time, so later
	// ticket type repricing never changes what an issued ticket was sold for.
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`

	Status TicketStatus `gorm:"type:varchar(20);default:'valid'" json:"status"`

	CreatedAt time.Time  `json:"created_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`

	Booking    *EventBooking    `json:"booking,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
	TicketType *EventTicketType `json:"ticket_type,omitempty" gorm:"foreignKey:TicketTypeID;constraint:OnDelete:CASCADE;"`
}

func (EventTicket) TableName() string {
	return "event_tickets"
}

// Use marks the ticket as scanned. The caller must hold the row lock and pass
// the owning booking's current status.
func (t *EventTicket) Use(bookingStatus BookingStatus, now time.Time) error {
	if t.Status == TicketUsed {
		return apperrors.New(apperrors.KindAlreadyUsed, "ticket already used")
	}
	if t.Status != TicketValid || bookingStatus != BookingConfirmed {
		return apperrors.New(apperrors.KindTicketNotUsable, "ticket cannot be used (invalid status or booking not confirmed)")
	}
	t.Status = TicketUsed
	t.UsedAt = &now
	return nil
}

// CreateTicketTypeRequest is the payload for adding a ticket category to an
// event listing.
type CreateTicketTypeRequest struct {
	EventID       string          `json:"event_id" binding:"required,uuid"`
	Name          string          `json:"name" binding:"required,max=100"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency" binding:"omitempty,max=10"`
	TotalQuantity int             `json:"total_quantity" binding:"required,min=1"`
	MaxPerUser    int             `json:"max_per_user" binding:"omitempty,min=1"`
	IsActive      *bool           `json:"is_active"`
}

// UpdateTicketTypeRequest carries partial edits; nil fields are untouched.
type UpdateTicketTypeRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=100"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	TotalQuantity *int             `json:"total_quantity" binding:"omitempty,min=0"`
	MaxPerUser    *int             `json:"max_per_user" binding:"omitempty,min=1"`
	IsActive      *bool            `json:"is_active"`
}

// BookingLineRequest is one requested line on the wire.
type BookingLineRequest struct {
	TicketTypeID string `json:"ticket_type" binding:"required,uuid"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
}

// CreateEventBookingRequest is the payload for a multi-line ticket purchase.
type CreateEventBookingRequest struct {
	EventID       string               `json:"event_id" binding:"required,uuid"`
	Lines         []BookingLineRequest `json:"lines" binding:"required,min=1,dive"`
	CustomerName  string               `json:"customer_name" binding:"required,max=200"`
	CustomerEmail string               `json:"customer_email" binding:"required,email"`
	CustomerPhone string               `json:"customer_phone" binding:"omitempty,max=20"`
	PaymentMethod string               `json:"payment_method" binding:"omitempty,max=50"`
}

// ConfirmBookingRequest records how the pending booking was paid.
type ConfirmBookingRequest struct {
	PaymentMethod    string `json:"payment_method" binding:"omitempty,max=50"`
	PaymentReference string `json:"payment_reference" binding:"omitempty,max=100"`
}

// UseTicketRequest carries the scanned identifier (QR code or ticket number).
type UseTicketRequest struct {
	Code string `json:"code" binding:"required"`
}

// TicketTypeListQuery filters ticket type lookups.
type TicketTypeListQuery struct {
	EventID string `form:"event_id" binding:"omitempty,uuid"`
}

// EventBookingListQuery filters ticket booking lookups.
type EventBookingListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status"`
}
