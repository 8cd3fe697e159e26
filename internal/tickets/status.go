package tickets

// BookingStatus is the lifecycle of a ticket booking transaction.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the booking can still move. CONFIRMED and
// CANCELLED never transition into each other.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingConfirmed || s == BookingCancelled
}

// TicketStatus is the state of an individual issued ticket.
type TicketStatus string

const (
	TicketValid     TicketStatus = "valid"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketValid, TicketUsed, TicketCancelled:
		return true
	}
	return false
}

func (s TicketStatus) String() string {
	return string(s)
}
