package errors

import "errors"

var ErrUnauthorized = errors.New("user is not authorized")
var ErrInvalidArgument = errors.New("invalid argument")

// ErrTicketTypeRequired is an invalid-argument error: there is no default tier.
var ErrTicketTypeRequired = &ValidationError{Message: "Ticket type is required for registration"}

var ErrOperationInProgress = errors.New("registration operation already in progress for this event")
var ErrEventNotFound = errors.New("event not found")
var ErrMissingTicketTypes = errors.New("event missing required ticket types")

// ValidationError is rejected before any call to the store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}
