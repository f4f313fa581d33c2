package pkgutil

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownPackage is returned when a package id is not known to the
	// package database, either because the catalog does not list it or
	// because pkgutil returned nothing for it.
	ErrUnknownPackage = errors.New("unknown package")

	// ErrMalformedPayload matches every *MalformedPayloadError.
	ErrMalformedPayload = errors.New("malformed pkgutil payload")

	// ErrNotImplemented is returned by operations that are reserved but
	// deliberately not wired to pkgutil.
	ErrNotImplemented = errors.New("not implemented")
)

// ExecutionError reports a pkgutil invocation that could not be started,
// timed out, or exited with a non-zero status. ExitCode is -1 when the
// process never produced an exit status.
type ExecutionError struct {
	Args     []string
	ExitCode int
	Err      error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("pkgutil %s failed with exit code %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// MalformedPayloadError describes a structured payload that is missing a
// required field or has the wrong shape.
type MalformedPayloadError struct {
	Field  string
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	var sb strings.Builder
	sb.WriteString(ErrMalformedPayload.Error())
	if e.Field != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Field)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is reports ErrMalformedPayload as a match so callers can use errors.Is.
func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

// ExitCode extracts the exit code from an *ExecutionError anywhere in err's
// chain. ok is false when err carries no ExecutionError.
func ExitCode(err error) (code int, ok bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.ExitCode, true
	}
	return 0, false
}

func malformed(field, reason string) error {
	return &MalformedPayloadError{Field: field, Reason: reason}
}
