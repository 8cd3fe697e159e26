package bookings

type Status string

const (
	StatusRequested        Status = "REQUESTED"
	StatusAccepted         Status = "ACCEPTED"
	StatusDeclined         Status = "DECLINED"
	StatusCancelledHost    Status = "CANCELLED_HOST"
	StatusCancelledGuest   Status = "CANCELLED_GUEST"
	StatusCancelledRequest Status = "CANCELLED_REQUEST"
	StatusCheckedIn        Status = "CHECKED_IN"
	StatusCheckedOut       Status = "CHECKED_OUT"
	StatusNoShow           Status = "NO_SHOW"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusDeclined,
		StatusCancelledHost, StatusCancelledGuest, StatusCancelledRequest,
		StatusCheckedIn, StatusCheckedOut, StatusNoShow:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether a booking in this status is still live. Every
// terminal status is inactive; no transition is permitted out of an inactive
// booking.
func (s Status) IsActive() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusCheckedIn:
		return true
	}
	return false
}

// Transition is the closed set of lifecycle operations on a lodging booking.
type Transition string

const (
	TransitionAccept   Transition = "accept"
	TransitionDecline  Transition = "decline"
	TransitionCancel   Transition = "cancel"
	TransitionCheckIn  Transition = "check_in"
	TransitionCheckOut Transition = "check_out"
	TransitionNoShow   Transition = "no_show"
)

func (t Transition) IsValid() bool {
	switch t {
	case TransitionAccept, TransitionDecline, TransitionCancel,
		TransitionCheckIn, TransitionCheckOut, TransitionNoShow:
		return true
	}
	return false
}
