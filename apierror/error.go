// Package apierror defines the sealed set of HTTP-status-bearing errors
// that the router translates directly into a response, per spec.md §4.8.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error is a typed error carrying the HTTP status it should surface as,
// an optional human-readable description, and an optional Retry-After
// instant. Handlers return an *Error (or any error wrapping one via
// errors.As) to take control of the status code the router assigns;
// any other error is surfaced as a generic 500.
type Error struct {
	StatusCode  int
	Description string
	RetryAfter  time.Time
	hasRetry    bool
	cause       error
}

// New builds an Error with the given status and description. statusCode
// is clamped into [100,599]; outside that range it defaults to 500.
func New(statusCode int, description string) *Error {
	if statusCode < 100 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}
	return &Error{StatusCode: statusCode, Description: description}
}

// Wrap builds a 500 Internal Server Error that preserves cause for
// logging while presenting a generic description to the client.
func Wrap(cause error) *Error {
	return &Error{
		StatusCode:  http.StatusInternalServerError,
		Description: "Something went wrong",
		cause:       cause,
	}
}

// WithRetryAfter sets the Retry-After instant and returns the receiver
// for chaining at construction sites.
func (e *Error) WithRetryAfter(t time.Time) *Error {
	e.RetryAfter = t
	e.hasRetry = true
	return e
}

// HasRetryAfter reports whether a Retry-After instant was set.
func (e *Error) HasRetryAfter() bool { return e.hasRetry }

func (e *Error) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Description)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap exposes the original cause, when Wrap was used, to errors.Is/As
// and to logging call sites that want the real failure, not the
// generic description sent to the client.
func (e *Error) Unwrap() error { return e.cause }

// AsError unwraps err into an *Error if it (or something it wraps) is
// one; otherwise it wraps err into a generic 500, per spec.md §4.7's
// "untyped failure" rule ("otherwise wrap into a 500 ... preserving
// the original cause for logging").
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Wrap(err)
}

func retryAfter(statusCode int, description string, d time.Duration) *Error {
	return New(statusCode, description).WithRetryAfter(time.Now().Add(d))
}

// Constructors for the fixed-status subtypes enumerated in spec.md §4.8.

func BadRequest(description string) *Error { return New(http.StatusBadRequest, description) }

func Unauthorized(description string) *Error { return New(http.StatusUnauthorized, description) }

func Forbidden(description string) *Error { return New(http.StatusForbidden, description) }

func NotFound(description string) *Error { return New(http.StatusNotFound, description) }

func MethodNotAllowed(description string) *Error {
	return New(http.StatusMethodNotAllowed, description)
}

func NotAcceptable(description string) *Error { return New(http.StatusNotAcceptable, description) }

func ProxyAuthRequired(description string) *Error {
	return New(http.StatusProxyAuthRequired, description)
}

func RequestTimeout(description string) *Error { return New(http.StatusRequestTimeout, description) }

func Conflict(description string) *Error { return New(http.StatusConflict, description) }

func Gone(description string) *Error { return New(http.StatusGone, description) }

func UnsupportedMediaType(description string) *Error {
	return New(http.StatusUnsupportedMediaType, description)
}

func InternalServerError(description string) *Error {
	return New(http.StatusInternalServerError, description)
}

func NotImplemented(description string) *Error { return New(http.StatusNotImplemented, description) }

func BadGateway(description string) *Error { return New(http.StatusBadGateway, description) }

// ServiceUnavailable builds a 503 with the given Retry-After duration,
// used by entity.WebResource when a file handle could not be obtained.
func ServiceUnavailable(description string, retryDelay time.Duration) *Error {
	return retryAfter(http.StatusServiceUnavailable, description, retryDelay)
}

func NetworkAuthenticationRequired(description string) *Error {
	return New(511, description)
}

// Body is the `{error: {message, status}}` shape the router serialises
// for any response that ends in an Error, whether typed or wrapped.
type Body struct {
	Error BodyError `json:"error"`
}

type BodyError struct {
	Message string `json:"message,omitempty"`
	Status  int    `json:"status"`
}

// AsBody renders e into the wire body shape.
func (e *Error) AsBody() Body {
	return Body{Error: BodyError{Message: e.Description, Status: e.StatusCode}}
}
