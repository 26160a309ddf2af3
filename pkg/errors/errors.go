package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates that a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")
)

// TransientError marks a failure that the caller may retry, typically a
// network fault or timeout talking to the inference service.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// MalformedOutputError marks a response that arrived but could not be parsed
// into the expected shape. Retrying without changing the prompt rarely helps,
// so it is kept distinct from TransientError.
type MalformedOutputError struct {
	Op  string
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s: malformed output: %v", e.Op, e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// Malformed wraps err as a MalformedOutputError carrying the raw output.
func Malformed(op, raw string, err error) error {
	if err == nil {
		return nil
	}
	return &MalformedOutputError{Op: op, Raw: raw, Err: err}
}

// IsMalformed reports whether err is (or wraps) a MalformedOutputError.
func IsMalformed(err error) bool {
	var me *MalformedOutputError
	return errors.As(err, &me)
}
