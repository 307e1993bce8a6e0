package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindPermission         Kind = "permission_denied"
	KindAuthentication     Kind = "not_authenticated"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindNotAllowed         Kind = "method_not_allowed"
	KindThrottled          Kind = "throttled"
	KindInternal           Kind = "internal_error"
)

// Error is the structured failure returned by services. Field names the
// offending input when there is one.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.NotFound("", ""))
// style checks work without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Field == "" || t.Field == e.Field)
}

func New(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

func Validation(field, message string) *Error {
	return New(KindValidation, field, message)
}

func Conflict(field, message string) *Error {
	return New(KindConflict, field, message)
}

func NotFound(field, message string) *Error {
	return New(KindNotFound, field, message)
}

func Permission(message string) *Error {
	return New(KindPermission, "", message)
}

func Authentication(message string) *Error {
	return New(KindAuthentication, "", message)
}

func InvalidCredentials(field, message string) *Error {
	return New(KindInvalidCredentials, field, message)
}

func NotAllowed(message string) *Error {
	return New(KindNotAllowed, "", message)
}

func Throttled(message string) *Error {
	return New(KindThrottled, "", message)
}

// Wrap attaches a cause to a kind, keeping the cause out of the message.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
