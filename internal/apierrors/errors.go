package apierrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error by who has to act on it.
type Kind string

const (
	// KindConfiguration means a required secret or endpoint is missing. The operator fixes deployment config.
	KindConfiguration Kind = "configuration"
	// KindValidation means the request or stored content is malformed. The caller fixes the input.
	KindValidation Kind = "validation"
	// KindUpstream means a third-party call failed or returned non-success.
	KindUpstream Kind = "upstream"
	// KindInternal is anything unclassified.
	KindInternal Kind = "internal"
)

// Machine-readable error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInternal            = "INTERNAL_ERROR"
	CodeNotConfigured       = "NOT_CONFIGURED"
	CodeUpstreamFailed      = "UPSTREAM_FAILED"
	CodeUpstreamRejected    = "UPSTREAM_REJECTED"
	CodeUpstreamUnreachable = "UPSTREAM_UNREACHABLE"
	CodeSourceUnavailable   = "SOURCE_UNAVAILABLE"
	CodeContentMissing      = "CONTENT_MISSING"
	CodeNotFound            = "NOT_FOUND"
	CodeEmailServiceError   = "EMAIL_SERVICE_ERROR"
	CodeAIServiceError      = "AI_SERVICE_ERROR"
	CodeMissingParameters   = "MISSING_PARAMETERS"
	CodeInvalidToken        = "INVALID_TOKEN"
)

// Kind sentinels, so callers can write errors.Is(err, apierrors.ErrConfiguration).
var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrUpstream      = errors.New("upstream error")
)

// Error is a classified error carrying the HTTP shape it maps to.
type Error struct {
	Kind       Kind
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels and other *Error values with the same kind and code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrUpstream:
		return e.Kind == KindUpstream
	}
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind && other.Code == e.Code
	}
	return false
}

// Wrap returns a copy of e with err as its cause. The copy still matches e under errors.Is.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// WithStatus returns a copy of e that maps to a different HTTP status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.StatusCode = status
	return &cp
}

// Configuration builds a 500 configuration error.
func Configuration(code, message string) *Error {
	return &Error{Kind: KindConfiguration, Code: code, Message: message, StatusCode: http.StatusInternalServerError}
}

// Validation builds a 400 validation error.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, StatusCode: http.StatusBadRequest}
}

// Upstream builds an upstream error. status is the status surfaced to our caller, 502 when zero.
func Upstream(code, message string, status int, err error) *Error {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &Error{Kind: KindUpstream, Code: code, Message: message, StatusCode: status, Err: err}
}

// InternalError wraps an unclassified error as a sanitized 500.
func InternalError(err error) *Error {
	return &Error{
		Kind:       KindInternal,
		Code:       CodeInternal,
		Message:    "An internal error occurred. Please try again later.",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts any error into an *Error.
// Classified errors pass through unchanged; anything else becomes a sanitized 500.
func MapError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return InternalError(err)
}
