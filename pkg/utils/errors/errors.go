package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType uint

const (
	// ErrorTypeUnknown is the default classification.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidArgument marks rejected inputs.
	ErrorTypeInvalidArgument
	// ErrorTypeNotFound marks missing resources.
	ErrorTypeNotFound
	// ErrorTypeAlreadyExists marks duplicate resources.
	ErrorTypeAlreadyExists
	// ErrorTypeDomain marks numeric domain violations (overflow, NaN).
	ErrorTypeDomain
	// ErrorTypeNoConvergence marks iterative solves that failed to converge.
	ErrorTypeNoConvergence
	// ErrorTypeInternal marks everything else.
	ErrorTypeInternal
)

// AppError carries a classification alongside the message and cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an unclassified error.
func New(message string) error {
	return &AppError{Type: ErrorTypeUnknown, Message: message}
}

// Newf creates an unclassified error from a format string.
func Newf(format string, args ...interface{}) error {
	return &AppError{Type: ErrorTypeUnknown, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a message, preserving an existing classification.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{Type: appErr.Type, Message: message, Err: err}
	}
	return &AppError{Type: ErrorTypeUnknown, Message: message, Err: err}
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// TypeOf returns the classification of err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// InvalidArgument creates an InvalidArgument error.
func InvalidArgument(message string) error {
	return &AppError{Type: ErrorTypeInvalidArgument, Message: message}
}

// InvalidArgumentf creates an InvalidArgument error from a format string.
func InvalidArgumentf(format string, args ...interface{}) error {
	return &AppError{Type: ErrorTypeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFound error.
func NotFound(message string) error {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// AlreadyExists creates an AlreadyExists error.
func AlreadyExists(message string) error {
	return &AppError{Type: ErrorTypeAlreadyExists, Message: message}
}

// Domain creates a numeric domain error.
func Domain(message string) error {
	return &AppError{Type: ErrorTypeDomain, Message: message}
}

// NoConvergence creates an error describing a failed iterative solve.
func NoConvergence(what string, iterations int) error {
	return &AppError{
		Type:    ErrorTypeNoConvergence,
		Message: fmt.Sprintf("%s did not converge after %d iterations", what, iterations),
	}
}

// Internal creates an Internal error.
func Internal(message string) error {
	return &AppError{Type: ErrorTypeInternal, Message: message}
}
