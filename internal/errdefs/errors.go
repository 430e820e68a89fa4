package errdefs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrRequest          = errors.New("request rejected")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrPermissionDenied = errors.New("permission denied")
	ErrTransport        = errors.New("boundary unreachable")
	ErrParse            = errors.New("unexpected response")
)

// FieldError is a single field-level failure. Field uses the JSON name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// ValidationError is a local, pre-submission failure. It blocks the request.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// RequestError is a 4xx rejection from the remote boundary. Message is the
// flattened detail and is meant to be shown to the user verbatim.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request rejected with status %d: %s", e.StatusCode, e.Message)
}

func (e *RequestError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrPermissionDenied
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrRequest
	}
}

// TransportError means the boundary could not be reached or answered 5xx.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ParseError means a response body did not match the endpoint schema.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// UserMessage returns the text a user should see for err. Boundary
// rejections keep their message, everything else falls back.
func UserMessage(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return "Please fill in all required fields"
	}
	return fallback
}
