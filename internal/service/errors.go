package service

import "errors"

// ErrorKind classifies a failed operation for the transport layer. Errors that
// carry no kind (unexpected store failures) are treated as internal.
type ErrorKind int

const (
	KindInvalidRequest ErrorKind = iota
	KindNotFound
	KindInternal
)

// Error is the caller-facing failure: a classification plus a human-readable
// message, surfaced unchanged for status-code mapping.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func invalidRequest(msg string) error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

func internalError(msg string) error {
	return &Error{Kind: KindInternal, Message: msg}
}

// KindOf reports the classification of err; ok is false when err is not a
// service error.
func KindOf(err error) (ErrorKind, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind, true
	}
	return KindInternal, false
}
