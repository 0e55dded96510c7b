package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ErrorKindUndefined ErrorKind = iota
	ErrorKindInvalidTimeout
	ErrorKindNotAuthorized
	ErrorKindNotFound
	ErrorKindExpired
	ErrorKindNotExpired
	ErrorKindHashMismatch
	ErrorKindEncodingError
	ErrorKindInvalidIdentifier
	ErrorKindConsensusFailed
	ErrorKindTimeout
	ErrorKindAlreadyTerminal
	ErrorKindInvalidArgument
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInvalidTimeout:
		return "InvalidTimeout"
	case ErrorKindNotAuthorized:
		return "NotAuthorized"
	case ErrorKindNotFound:
		return "NotFound"
	case ErrorKindExpired:
		return "Expired"
	case ErrorKindNotExpired:
		return "NotExpired"
	case ErrorKindHashMismatch:
		return "HashMismatch"
	case ErrorKindEncodingError:
		return "EncodingError"
	case ErrorKindInvalidIdentifier:
		return "InvalidIdentifier"
	case ErrorKindConsensusFailed:
		return "ConsensusFailed"
	case ErrorKindTimeout:
		return "Timeout"
	case ErrorKindAlreadyTerminal:
		return "AlreadyTerminal"
	case ErrorKindInvalidArgument:
		return "InvalidArgument"
	default:
		return "Undefined"
	}
}

// ParseErrorKind is the inverse of ErrorKind.String.
func ParseErrorKind(s string) ErrorKind {
	for k := ErrorKindInvalidTimeout; k <= ErrorKindInvalidArgument; k++ {
		if k.String() == s {
			return k
		}
	}
	return ErrorKindUndefined
}

// Sentinels to be used with errors.Is, they match any Error of the same kind.
var (
	ErrInvalidTimeout    = &Error{Kind: ErrorKindInvalidTimeout}
	ErrNotAuthorized     = &Error{Kind: ErrorKindNotAuthorized}
	ErrNotFound          = &Error{Kind: ErrorKindNotFound}
	ErrExpired           = &Error{Kind: ErrorKindExpired}
	ErrNotExpired        = &Error{Kind: ErrorKindNotExpired}
	ErrHashMismatch      = &Error{Kind: ErrorKindHashMismatch}
	ErrEncoding          = &Error{Kind: ErrorKindEncodingError}
	ErrInvalidIdentifier = &Error{Kind: ErrorKindInvalidIdentifier}
	ErrConsensusFailed   = &Error{Kind: ErrorKindConsensusFailed}
	ErrTimeout           = &Error{Kind: ErrorKindTimeout}
	ErrAlreadyTerminal   = &Error{Kind: ErrorKindAlreadyTerminal}
	ErrInvalidArgument   = &Error{Kind: ErrorKindInvalidArgument}
)

// Error is the tagged error returned by every failed HTLC operation.
type Error struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first domain error found in the chain of err.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrorKindUndefined
}

// ReasonOf returns the human readable reason of a domain error, or the
// error string for anything else.
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func IsNotFound(err error) bool {
	return KindOf(err) == ErrorKindNotFound
}
