package common

import (
	"errors"
	"net/http"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
)

// Kind classifies an Error. Each kind has a fixed public name and status code.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindMethodNotAllowed
	KindServiceUnavailable
)

var kindNames = map[Kind]string{
	KindInternal:           "InternalServerError",
	KindValidation:         "ValidationError",
	KindUnauthorized:       "UnauthorizedError",
	KindForbidden:          "ForbiddenError",
	KindNotFound:           "NotFoundError",
	KindMethodNotAllowed:   "MethodNotAllowedError",
	KindServiceUnavailable: "ServiceError",
}

var kindStatus = map[Kind]int{
	KindInternal:           http.StatusInternalServerError,
	KindValidation:         http.StatusBadRequest,
	KindUnauthorized:       http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindNotFound:           http.StatusNotFound,
	KindMethodNotAllowed:   http.StatusMethodNotAllowed,
	KindServiceUnavailable: http.StatusServiceUnavailable,
}

// Name returns the public error name, e.g. "NotFoundError".
func (k Kind) Name() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return kindNames[KindInternal]
}

// StatusCode returns the HTTP status associated with the kind.
func (k Kind) StatusCode() int {
	if c, ok := kindStatus[k]; ok {
		return c
	}
	return http.StatusInternalServerError
}

// Error is the typed failure raised by services and the authorization engine.
// Message and Action are safe to show to the caller; Cause never is.
type Error struct {
	Kind    Kind
	Message string
	Action  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.Name() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.Name() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Response is the wire representation of an Error.
type Response struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Action     string `json:"action"`
	StatusCode int    `json:"status_code"`
}

// Response renders the public representation of e.
func (e *Error) Response() Response {
	return Response{
		Name:       e.Kind.Name(),
		Message:    e.Message,
		Action:     e.Action,
		StatusCode: e.Kind.StatusCode(),
	}
}

func newError(kind Kind, message, action, defMessage, defAction string) *Error {
	if message == "" {
		message = defMessage
	}
	if action == "" {
		action = defAction
	}
	return &Error{Kind: kind, Message: message, Action: action}
}

// NewValidationError reports malformed or conflicting input.
func NewValidationError(message, action string) *Error {
	return newError(KindValidation, message, action,
		"A validation error occurred", "Adjust the submitted data and try again")
}

// NewUnauthorizedError reports a missing or invalid credential.
func NewUnauthorizedError(message, action string) *Error {
	return newError(KindUnauthorized, message, action,
		"User is not authenticated", "Log in again to continue")
}

// NewForbiddenError reports a principal that lacks a required feature.
func NewForbiddenError(message, action string) *Error {
	return newError(KindForbidden, message, action,
		"Access denied", "Check the required features before continuing")
}

// NewNotFoundError reports an absent resource.
func NewNotFoundError(message, action string) *Error {
	return newError(KindNotFound, message, action,
		"This resource could not be found in the system", "Check that the parameters are correct")
}

// NewMethodNotAllowedError reports an unsupported HTTP method.
func NewMethodNotAllowedError() *Error {
	return &Error{
		Kind:    KindMethodNotAllowed,
		Message: "Method not allowed for this endpoint",
		Action:  "Check that the HTTP method is correct",
	}
}

// NewServiceError reports an unavailable collaborator.
func NewServiceError(message string, cause error) *Error {
	e := newError(KindServiceUnavailable, message, "",
		"Service unavailable at the moment", "Check that the service is available")
	e.Cause = cause
	return e
}

// NewInternalError wraps an unexpected failure. The cause is kept for logs only.
func NewInternalError(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: "An unexpected internal error occurred",
		Action:  "Contact support",
		Cause:   cause,
	}
}

// AsError returns err as *Error, wrapping untyped errors as internal ones.
// A nil err yields nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternalError(err)
}

// KindOf reports the kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	return AsError(err).Kind
}
