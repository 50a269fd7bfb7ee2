package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)))
}

func TestNewBadRequestError(t *testing.T) {
	t.Parallel()

	fields := []FieldError{{Field: "qrCode", Error: "is required"}}
	err := NewBadRequestError("Session & QR required", true, nil, fields, nil)

	assert.Equal(t, "BAD_REQUEST", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Session & QR required", err.Error())
	assert.True(t, err.Override)
	assert.Equal(t, fields, err.Errors)

	code := "SESSION_INVALID"
	custom := NewBadRequestError("bad", false, &code, nil, nil)
	assert.Equal(t, code, custom.Code)
}

func TestNewInternalServerError_IsGeneric(t *testing.T) {
	t.Parallel()

	err := NewInternalServerError()
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "Internal Server Error", err.Message)
	assert.False(t, err.Override)
}

func TestHTTPError_As(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("handler: %w", NewNotFoundError("Session not found", true, nil))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	assert.False(t, errors.As(errors.New("plain"), &httpErr))
}

func TestNewTooManyRequestsError(t *testing.T) {
	t.Parallel()

	err := NewTooManyRequestsError("Too many requests")

	assert.Equal(t, "Too many requests", err.Message)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, "TOO_MANY_REQUESTS", err.Code)
}
