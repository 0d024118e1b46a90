// Package apperr is the error taxonomy shared by services and the HTTP layer.
// Services return these; the HTTP layer maps Kind to a status code.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newErr(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func NotFound(message string) *Error {
	return newErr(KindNotFound, "not_found", message)
}

func Forbidden(message string) *Error {
	return newErr(KindForbidden, "forbidden", message)
}

func Unauthenticated(code, message string) *Error {
	return newErr(KindUnauthenticated, code, message)
}

func BadRequest(code, message string) *Error {
	return newErr(KindBadRequest, code, message)
}

func Validation(message string, fields []FieldError) *Error {
	e := newErr(KindValidation, "invalid_request", message)
	e.Fields = fields
	return e
}

// Internal wraps an unexpected failure. The message is safe to show clients.
func Internal(message string, err error) *Error {
	e := newErr(KindInternal, "internal_error", message)
	e.Err = err
	return e
}

// KindOf reports the kind of err, KindInternal for anything untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
