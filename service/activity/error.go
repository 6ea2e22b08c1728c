package activity

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Activity service implementations and validations.
var (
	ErrInvalidActivity = errors.New("invalid activity")
	ErrNotFound        = errors.New("activity not found")
)

// Error wraps common Activity errors.
type Error struct {
	err error
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// IsInvalidActivity indicates if err is ErrInvalidActivity.
func IsInvalidActivity(err error) bool {
	return unwrapError(err) == ErrInvalidActivity
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
