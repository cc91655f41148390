package terminology

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminology service failures.
type ErrorKind int

const (
	// KindNotFound means the CodeSystem or ValueSet is unknown to the
	// service. It does not mean "the code is invalid"; that is a
	// false ValidateResult.
	KindNotFound ErrorKind = iota

	// KindNetworkError means the request never produced an HTTP
	// response (connection refused, timeout, DNS failure).
	KindNetworkError

	// KindInvalidRequest means the caller's input was malformed, for
	// example using a supplement URL as a Coding system.
	KindInvalidRequest

	// KindServerError means the server responded with a non-2xx status
	// or an unparseable body.
	KindServerError
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindNetworkError:
		return "network error"
	case KindInvalidRequest:
		return "invalid request"
	case KindServerError:
		return "server error"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by all Service implementations.
// Use errors.Is with the sentinel values (ErrNotFound etc.) to branch
// on the kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return fmt.Sprintf("terminology: %s: %v", e.Kind, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("terminology: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("terminology: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against the kind sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinel values for errors.Is comparisons.
var (
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrNetwork        = &Error{Kind: KindNetworkError}
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest}
	ErrServer         = &Error{Kind: KindServerError}
)

// invalidRequestErr builds a KindInvalidRequest error.
func invalidRequestErr(format string, args ...any) error {
	return &Error{Kind: KindInvalidRequest, Msg: fmt.Sprintf(format, args...)}
}

// serverErr builds a KindServerError error.
func serverErr(format string, args ...any) error {
	return &Error{Kind: KindServerError, Msg: fmt.Sprintf(format, args...)}
}

// networkErr wraps a transport failure.
func networkErr(err error) error {
	return &Error{Kind: KindNetworkError, Err: err}
}

// IsNotFound reports whether err is a KindNotFound terminology error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidRequest reports whether err is a KindInvalidRequest terminology error.
func IsInvalidRequest(err error) bool { return errors.Is(err, ErrInvalidRequest) }

// IsNetworkError reports whether err is a KindNetworkError terminology error.
func IsNetworkError(err error) bool { return errors.Is(err, ErrNetwork) }

// IsServerError reports whether err is a KindServerError terminology error.
func IsServerError(err error) bool { return errors.Is(err, ErrServer) }
