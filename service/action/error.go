package action

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors for Action service implementations and validations.
var (
	ErrInvalidAction = errors.New("invalid action")
)

// Error wraps common Action errors.
type Error struct {
	err error
	msg string
}

func (e *Error) Error() string {
	return e.msg
}

// IsInvalidAction indicates if err is ErrInvalidAction.
func IsInvalidAction(err error) bool {
	return unwrapError(err) == ErrInvalidAction
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
