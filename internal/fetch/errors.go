package fetch

import (
	"errors"
	"fmt"
)

// Error codes surfaced to the table when a fetch fails.
const (
	CodeTransport = "TRANSPORT"
	CodeStatus    = "BAD_STATUS"
	CodeDecode    = "MALFORMED_BODY"
	CodeCanceled  = "CANCELED"
)

// Error is a typed fetch failure.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on code so callers can use errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

var (
	ErrTransport = &Error{Code: CodeTransport, Message: "could not reach the assignments service"}
	ErrStatus    = &Error{Code: CodeStatus, Message: "the assignments service answered with an error"}
	ErrDecode    = &Error{Code: CodeDecode, Message: "the assignments service sent an unreadable response"}
	ErrCanceled  = &Error{Code: CodeCanceled, Message: "request superseded"}
)

func wrap(base *Error, err error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Err: err}
}

// IsRetryable reports whether repeating the request may succeed.
func IsRetryable(err error) bool {
	var fe *Error
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.Code {
	case CodeTransport:
		return true
	case CodeStatus:
		return fe.Status >= 500 || fe.Status == 429 || fe.Status == 408
	default:
		return false
	}
}
