package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the transport layer can map it to a
// status code without parsing messages.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindOutOfStock
	KindInvalidQuantity
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindOutOfStock:
		return "out_of_stock"
	case KindInvalidQuantity:
		return "invalid_quantity"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindStorage:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is the tagged error variant returned by every service operation.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets callers match on a bare kind sentinel, e.g.
// errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an underlying persistence error. The transaction it came
// from has already been rolled back by the caller.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Message: "database error", Cause: cause}
}

// KindOf extracts the kind from any error in the chain, KindUnknown if none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// MessageOf returns the human-readable detail for a domain error, or the
// plain error text for anything else.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
