package rsvp

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Rsvp service implementations and validations.
var (
	ErrInvalidRsvp = errors.New("invalid rsvp")
	ErrNotFound    = errors.New("rsvp not found")
)

// Error wraps common Rsvp errors.
type Error struct {
	err error
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// IsInvalidRsvp indicates if err is ErrInvalidRsvp.
func IsInvalidRsvp(err error) bool {
	return unwrapError(err) == ErrInvalidRsvp
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		err: err,
		msg: fmt.Sprintf(
			errFmt,
			err,
			fmt.Sprintf(format, args...),
		),
	}
}
