// Package errors carries the coded errors shared by every autotrader package.
//
// Codes are grouped by the hundred: validation (1xx), series and data
// sources (2xx), indicators (3xx), forecasting (4xx), the ledger and the
// exchange (5xx), the control loop (6xx), market data downloads (7xx) and
// the execution journal (8xx). Only configuration, mode and version errors
// stop the control loop. Anything else ends the current iteration and the
// loop carries on.
//
//	if errors.HasCode(err, errors.ErrCodeInsufficientFunds) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is a message tagged with a code, optionally wrapping a cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap tags cause with code. The cause stays reachable through Unwrap.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is and As forward to the standard library so callers need a single
// errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain, or
// ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var coded *Error
	if !errors.As(err, &coded) {
		return ErrCodeUnknown
	}

	return coded.Code
}

func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsRecoverable reports whether the control loop may continue after err.
func IsRecoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfiguration, ErrCodeInvalidMode, ErrCodeInvalidVersion:
		return false
	default:
		return true
	}
}

// Label is the metrics label of err's code category.
func Label(err error) string {
	return GetCode(err).String()
}
