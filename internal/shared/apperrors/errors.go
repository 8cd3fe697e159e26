package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure. The transport layer maps kinds to HTTP
// status codes; services and repositories only pick the kind.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindAvailabilityConflict  Kind = "availability_conflict"
	KindInsufficientInventory Kind = "insufficient_inventory"
	KindTicketTypeInactive    Kind = "ticket_type_inactive"
	KindInactiveBooking       Kind = "inactive_booking"
	KindUnauthenticated       Kind = "unauthenticated"
	KindPermission            Kind = "permission"
	KindConflict              Kind = "conflict"
	KindNotFound              Kind = "not_found"
	KindAlreadyUsed           Kind = "already_used"
	KindTicketNotUsable       Kind = "ticket_not_usable"
	KindInternal              Kind = "internal"
)

// Error is a classified domain error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FromIntegrity surfaces a persistence constraint violation as a validation
// failure with the raw detail attached.
func FromIntegrity(err error) *Error {
	return &Error{Kind: KindValidation, Message: "integrity constraint violated", Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// AsError extracts the classified error from err's chain.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a classified error to an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict,
		KindAvailabilityConflict,
		KindInsufficientInventory,
		KindTicketTypeInactive,
		KindInactiveBooking,
		KindAlreadyUsed,
		KindTicketNotUsable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
