package like

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Like service implementations and validations.
var (
	ErrInvalidLike = errors.New("invalid like")
	ErrNotFound    = errors.New("like not found")
)

// Error wraps common Like errors.
type Error struct {
	err error
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// IsInvalidLike indicates if err is ErrInvalidLike.
func IsInvalidLike(err error) bool {
	return unwrapError(err) == ErrInvalidLike
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
