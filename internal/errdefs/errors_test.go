package errdefs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestErrorUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"NotFound", http.StatusNotFound, ErrNotFound},
		{"Conflict", http.StatusConflict, ErrConflict},
		{"Unauthorized", http.StatusUnauthorized, ErrPermissionDenied},
		{"Forbidden", http.StatusForbidden, ErrPermissionDenied},
		{"BadRequest", http.StatusBadRequest, ErrValidation},
		{"Unprocessable", http.StatusUnprocessableEntity, ErrValidation},
		{"Other", http.StatusTeapot, ErrRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := fmt.Errorf("create assignment: %w", &RequestError{StatusCode: tc.status, Message: "x"})
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestValidationError(t *testing.T) {
	verr := NewValidationError()
	assert.NoError(t, verr.OrNil())

	verr.Add("title", "this field is required")
	verr.Add("content_id", "this field is required")

	err := verr.OrNil()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: title: this field is required, content_id: this field is required", err.Error())
}

func TestTransportAndParseErrors(t *testing.T) {
	cause := errors.New("connection refused")

	terr := &TransportError{Op: "list assignments", Err: cause}
	assert.ErrorIs(t, terr, ErrTransport)
	assert.ErrorIs(t, terr, cause)

	perr := &ParseError{Op: "get assignment", Err: cause}
	assert.ErrorIs(t, perr, ErrParse)
	assert.NotErrorIs(t, perr, ErrTransport)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "body.title: field required",
		UserMessage(&RequestError{StatusCode: 422, Message: "body.title: field required"}, "Failed"))
	assert.Equal(t, "Please fill in all required fields",
		UserMessage(NewValidationError(FieldError{Field: "title", Message: "required"}), "Failed"))
	assert.Equal(t, "Failed to load assignments",
		UserMessage(&TransportError{Op: "list", Err: errors.New("eof")}, "Failed to load assignments"))
}
