package follower

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Follow service implementations and validations.
var (
	ErrEmptySource   = errors.New("empty source")
	ErrInvalidFollow = errors.New("invalid follow")
)

// Error wraps common Follow errors.
type Error struct {
	err error
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// IsEmptySource indicates if err is ErrEmptySource.
func IsEmptySource(err error) bool {
	return unwrapError(err) == ErrEmptySource
}

// IsInvalidFollow indicates if err is ErrInvalidFollow.
func IsInvalidFollow(err error) bool {
	return unwrapError(err) == ErrInvalidFollow
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
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}
