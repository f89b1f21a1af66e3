package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for the HTTP envelope and for callers that branch
// on failure kind.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata is the transport view of a code. PublicMessage replaces the
// error message whenever DetailsAllowed is false.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:    {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed", DetailsAllowed: true},
	CodeUnauthorized:  {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
	CodeForbidden:     {HTTPStatus: http.StatusForbidden, PublicMessage: "access denied"},
	CodeNotFound:      {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeConflict:      {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected"},
	CodeStateConflict: {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "state transition disallowed", DetailsAllowed: true},
	CodeIdempotency:   {HTTPStatus: http.StatusConflict, PublicMessage: "idempotency key reused", DetailsAllowed: true},
	CodeRateLimit:     {HTTPStatus: http.StatusTooManyRequests, Retryable: true, PublicMessage: "rate limit exceeded"},
	CodeInternal:      {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal server error"},
	CodeDependency:    {HTTPStatus: http.StatusServiceUnavailable, Retryable: true, PublicMessage: "external service unavailable", DetailsAllowed: true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded error with an optional cause and client-facing details.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches code and message to err. A nil err yields a plain New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.code) + ": " + e.message
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether the outermost *Error in err's chain carries code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// CodeOf defaults to CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.code
	}
	return CodeInternal
}

// Retryable reports whether a caller may repeat the failed operation as-is.
func Retryable(err error) bool {
	return err != nil && MetadataFor(CodeOf(err)).Retryable
}
