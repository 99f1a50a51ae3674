// Package errs defines the error taxonomy shared by the engine, the remote
// client and the HTTP layer.
//
// Every error produced by the engine is an *Error carrying one of the kind
// sentinels below, so callers branch with errors.Is(err, errs.ErrValidation)
// without knowing which package produced it.
package errs

import (
	"errors"
	"fmt"
)

// Kind sentinels.
var (
	// ErrValidation is a local precondition failure. It never reaches the network.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is a remote 404 or "no data" answer.
	ErrNotFound = errors.New("not found")
	// ErrAvailabilityNotConfigured means the interviewer must set up availability before bidding.
	ErrAvailabilityNotConfigured = errors.New("interviewer availability not configured")
	// ErrRemote is any other transport or service failure.
	ErrRemote = errors.New("remote service error")
	// ErrBusy rejects a submission while an identical one is still in flight.
	ErrBusy = errors.New("operation already in progress")
)

// Error is the unified error value. Op names the failing operation
// (e.g. "engine.place_bid"), Message is safe to show to a user.
type Error struct {
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	default:
		return msg
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// New builds an error of the given kind without a cause.
func New(op string, kind error, msg string) error {
	return &Error{Op: op, Kind: kind, Message: msg}
}

// Wrap builds an error of the given kind around err.
func Wrap(op string, kind error, msg string, err error) error {
	return &Error{Op: op, Kind: kind, Message: msg, Err: err}
}

// Validation is shorthand for New(op, ErrValidation, msg).
func Validation(op, msg string) error {
	return New(op, ErrValidation, msg)
}

// KindOf returns the kind sentinel carried by err, or ErrRemote for
// anything unclassified.
func KindOf(err error) error {
	for _, k := range []error{ErrValidation, ErrBusy, ErrAvailabilityNotConfigured, ErrNotFound, ErrRemote} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrRemote
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Label returns a short snake_case label for the kind of err, used in
// metrics and API error codes.
func Label(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "validation"
	case ErrBusy:
		return "busy"
	case ErrAvailabilityNotConfigured:
		return "availability_not_configured"
	case ErrNotFound:
		return "not_found"
	default:
		return "remote"
	}
}
