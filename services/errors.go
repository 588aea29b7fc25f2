package services

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindPolicy
	KindPersistence
)

// Error is the error type returned by every store and workflow operation.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Kind    ErrorKind
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidEmail           = &Error{Kind: KindValidation, Code: "invalid_email", Field: "email", Message: "Please provide a valid email address"}
	ErrInvalidService         = &Error{Kind: KindValidation, Code: "invalid_service", Field: "service", Message: "Selected service is not available"}
	ErrInvalidDate            = &Error{Kind: KindValidation, Code: "invalid_date", Field: "date", Message: "Invalid booking date or time"}
	ErrInvalidStatus          = &Error{Kind: KindValidation, Code: "invalid_status", Field: "status", Message: "Invalid booking status"}
	ErrLocationNotServiceable = &Error{Kind: KindPolicy, Code: "location_not_serviceable", Field: "zip_code", Message: "Sorry, we do not service this area yet"}
	ErrCancellationWindow     = &Error{Kind: KindPolicy, Code: "cancellation_window", Message: "This booking can no longer be canceled online"}
	ErrNotCancellable         = &Error{Kind: KindPolicy, Code: "not_cancellable", Message: "This booking cannot be canceled in its current status"}
	ErrInvalidTransition      = &Error{Kind: KindPolicy, Code: "invalid_transition", Field: "status", Message: "This status change is not allowed"}
	ErrInvalidCancelCode      = &Error{Kind: KindPolicy, Code: "invalid_cancel_code", Field: "code", Message: "Invalid cancellation code"}
	ErrBookingNotFound        = &Error{Kind: KindNotFound, Code: "booking_not_found", Message: "Booking not found"}
	ErrClientNotFound         = &Error{Kind: KindNotFound, Code: "client_not_found", Message: "Client not found"}
	ErrLocationNotFound       = &Error{Kind: KindNotFound, Code: "location_not_found", Message: "Location not found"}
	ErrServiceNotFound        = &Error{Kind: KindNotFound, Code: "service_not_found", Message: "Service not found"}
)

// MissingField reports a required form field that was left empty.
func MissingField(field string) error {
	return &Error{
		Kind:    KindValidation,
		Code:    "missing_field",
		Field:   field,
		Message: fmt.Sprintf("Please fill in the required field: %s", field),
	}
}

func invalidField(field, message string) error {
	return &Error{Kind: KindValidation, Code: "invalid_field", Field: field, Message: message}
}

func persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Code: "persistence", Message: op, Err: err}
}

// KindOf returns the kind of err, KindPersistence for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// PublicMessage is safe to show to the caller; persistence details stay in logs.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindPersistence {
		return e.Message
	}
	return "Something went wrong, please try again later"
}
