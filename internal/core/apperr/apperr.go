// Package apperr is the error taxonomy shared by services and both API surfaces.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindUnauthenticated:
		return "AuthenticationError"
	case KindForbidden:
		return "ForbiddenError"
	case KindNotFound:
		return "NotFoundError"
	}
	return "InternalError"
}

// Code is the value of extensions.code on GraphQL errors.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "BAD_USER_INPUT"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	}
	return "INTERNAL_SERVER_ERROR"
}

// Status is the HTTP-semantics code used in the REST envelope.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return 400
	case KindUnauthenticated:
		return 401
	case KindForbidden:
		return 403
	case KindNotFound:
		return 404
	}
	return 500
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind   Kind
	Msg    string
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Public is the message safe to show to clients. Internal errors never expose their cause.
func (e *Error) Public() string {
	if e.Kind == KindInternal {
		return "internal server error"
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

func Unauthenticated(msg string) error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

func Forbidden(msg string) error {
	if msg == "" {
		msg = "forbidden"
	}
	return &Error{Kind: KindForbidden, Msg: msg}
}

// NotFound renders "<resource> not found".
func NotFound(resource string) error {
	if resource == "" {
		resource = "resource"
	}
	return &Error{Kind: KindNotFound, Msg: resource + " not found"}
}

func Validation(fields ...FieldError) error {
	return &Error{Kind: KindValidation, Msg: "validation failed", Fields: fields}
}

func Invalid(field, format string, args ...any) error {
	return Validation(FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// As unwraps err into an *Error; plain errors come back as KindInternal wrappers.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Err: err}
}

func KindOf(err error) Kind { return As(err).Kind }

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// Summary joins field messages, used where only a single line fits (REST msg).
func (e *Error) Summary() string {
	if len(e.Fields) == 0 {
		return e.Public()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Public() + ": " + strings.Join(parts, "; ")
}
