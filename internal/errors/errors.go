// Package errors is the one place the service imports error helpers from.
// Matching goes through the standard library; wrapping goes through
// pkg/errors so infrastructure faults keep a stack trace for the logs.
package errors

import (
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

// New returns a plain sentinel-style error.
func New(text string) error {
	return stderrors.New(text)
}

// Is reports whether target is anywhere in err's chain.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain assignable to target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Wrap adds message and a stack trace. A nil err stays nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

// WithStack records the caller's stack without changing the message.
func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// Errorf builds a new error with a stack trace.
func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}
