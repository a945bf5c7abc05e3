package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories surfaced to callers.
// Everything above the API client branches on Kind, never on source types.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota

	// KindNotAuthenticated means no valid session credential was available;
	// no network call was made.
	KindNotAuthenticated

	// KindNetwork is a transport-level failure: no response reached us.
	KindNetwork

	// KindDecoding means a response arrived but did not match the expected shape.
	KindDecoding

	// KindServer is a non-2xx response, with the structured error body if any.
	KindServer

	// KindCancelled means the caller aborted before completion. Never shown
	// to the user; logged only.
	KindCancelled

	// KindInternalState is a violated local precondition (e.g. a required
	// cached field missing).
	KindInternalState
)

// String returns the kind's stable name for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindNetwork:
		return "network_error"
	case KindDecoding:
		return "decoding_error"
	case KindServer:
		return "server_error"
	case KindCancelled:
		return "request_cancelled"
	case KindInternalState:
		return "internal_state_error"
	default:
		return "unknown_error"
	}
}

// Error carries an ErrorKind plus diagnostics. The original cause is
// preserved for logs but callers branch only on Kind.
type Error struct {
	Kind    ErrorKind
	Status  int    // HTTP status for KindServer, else 0
	Code    string // structured errorCode from the server, if any
	Message string
	Err     error // wrapped cause
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a new Error with a message.
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around a cause.
func Wrap(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf classifies an arbitrary error. Context cancellation maps to
// KindCancelled even when wrapped by a transport error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsCancelled reports whether err is a caller-initiated abort that must be
// suppressed from user-visible error surfaces.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}
