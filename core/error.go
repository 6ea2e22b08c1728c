package core

import (
	"errors"
	"fmt"
)

const errFmt = "%s: %s"

// Common errors
var (
	ErrDataCorruption = errors.New("data corruption")
	ErrInvalidEntity  = errors.New("invalid entity")
	ErrNotFound       = errors.New("resource not found")
	ErrNotPermitted   = errors.New("operation not permitted")
)

// Error is a wrapper used to transport core specific errors.
type Error struct {
	Err error
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

// IsDataCorruption indicates if err is ErrDataCorruption.
func IsDataCorruption(err error) bool {
	return unwrapError(err) == ErrDataCorruption
}

// IsInvalidEntity indicates if err is ErrInvalidEntity.
func IsInvalidEntity(err error) bool {
	return unwrapError(err) == ErrInvalidEntity
}

// IsNotFound indicates if err is ErrNotFound.
func IsNotFound(err error) bool {
	return unwrapError(err) == ErrNotFound
}

// IsNotPermitted indicates if err is ErrNotPermitted.
func IsNotPermitted(err error) bool {
	return unwrapError(err) == ErrNotPermitted
}

func unwrapError(err error) error {
	switch e := err.(type) {
	case *Error:
		return e.Err
	}

	return err
}

func wrapError(err error, format string, args ...interface{}) error {
	return &Error{
		Err: err,
		Msg: fmt.Sprintf(
			errFmt,
			err.Error(),
			fmt.Sprintf(format, args...),
		),
	}
}
