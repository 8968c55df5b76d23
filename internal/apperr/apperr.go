// Package apperr defines the error taxonomy shared by the client packages.
// Every failure the core reports is an *Error tagged with a Kind so callers
// can decide where it is surfaced (inline, page level, render area).
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how it propagates.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindValidation is bad user input: empty signature, out of range
	// coordinate, missing identity.
	KindValidation
	// KindState is an illegal transition: committing while idle, claiming a
	// terminal field.
	KindState
	// KindNotFound means no matching pending field, document or token.
	KindNotFound
	// KindTransport covers network and API failures, including 401.
	KindTransport
	// KindRender means the document source failed to load or parse.
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindRender:
		return "render"
	default:
		return "unknown"
	}
}

var (
	ErrNotReady          = errors.New("container not measured yet")
	ErrIdle              = errors.New("placement is not armed")
	ErrBusy              = errors.New("placement already in flight")
	ErrTerminal          = errors.New("field already signed or declined")
	ErrNoPendingField    = errors.New("no pending signature field on this page")
	ErrNothingToFinalize = errors.New("no signature fields to finalize")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSigningComplete   = errors.New("signing already completed")
	ErrNotLoaded         = errors.New("document not loaded")
	ErrWrongFlow         = errors.New("operation not available in this flow")
)

// Error is the concrete error type. Message is what a user should see; Err
// carries the cause (often one of the sentinels above).
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Status is the HTTP status for transport errors, zero otherwise.
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

// State builds a KindState error wrapping cause.
func State(op string, cause error) error {
	return &Error{Kind: KindState, Op: op, Err: cause}
}

// NotFound builds a KindNotFound error.
func NotFound(op, msg string, cause error) error {
	return &Error{Kind: KindNotFound, Op: op, Message: msg, Err: cause}
}

// Transport builds a KindTransport error.
func Transport(op string, status int, msg string, cause error) error {
	return &Error{Kind: KindTransport, Op: op, Status: status, Message: msg, Err: cause}
}

// Render builds a KindRender error.
func Render(op, msg string, cause error) error {
	return &Error{Kind: KindRender, Op: op, Message: msg, Err: cause}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user facing text of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
	}
	return err.Error()
}
