package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/qrtrack/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pointPayload struct {
	Name  string `json:"name" validate:"required"`
	Label string `json:"label" validate:"max=5"`
}

func (p *pointPayload) Validate() error {
	return Struct(p)
}

type messagePayload struct {
	pointPayload
}

func (p *messagePayload) ValidationMessage() string {
	return "Name required"
}

type pathPayload struct {
	ID int64 `param:"id" validate:"required,min=1"`
}

func (p *pathPayload) Validate() error {
	return Struct(p)
}

func newContext(method, body string) echo.Context {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func requireHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

func TestBindAndValidate_OK(t *testing.T) {
	p := &pointPayload{}
	err := BindAndValidate(newContext(http.MethodPost, `{"name":"gate","label":"a"}`), p)

	require.NoError(t, err)
	assert.Equal(t, "gate", p.Name)
}

func TestBindAndValidate_FieldErrorsUseJSONNames(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"label":"too long"}`), &pointPayload{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Validation failed", httpErr.Message)
	assert.ElementsMatch(t, []errs.FieldError{
		{Field: "name", Error: "is required"},
		{Field: "label", Error: "must not exceed 5 characters"},
	}, httpErr.Errors)
}

func TestBindAndValidate_PayloadMessage(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"name":""}`), &messagePayload{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Name required", httpErr.Message)
	assert.True(t, httpErr.Override)
}

func TestBindAndValidate_EmptyBody(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, ""), &messagePayload{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Name required", httpErr.Message)
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"name":`), &pointPayload{})

	httpErr := requireHTTPError(t, err)
	assert.NotEmpty(t, httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidate_BindErrorKeepsPayloadMessage(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"name":42}`), &messagePayload{})

	httpErr := requireHTTPError(t, err)
	assert.Equal(t, "Name required", httpErr.Message)
	assert.True(t, httpErr.Override)
	require.Len(t, httpErr.Errors, 1)
	assert.NotEmpty(t, httpErr.Errors[0].Error)
}

func TestBindAndValidate_WrongType(t *testing.T) {
	err := BindAndValidate(newContext(http.MethodPost, `{"name":42}`), &pointPayload{})

	requireHTTPError(t, err)
}

func TestBindAndValidate_PathParam(t *testing.T) {
	c := newContext(http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := BindAndValidate(c, &pathPayload{})
	httpErr := requireHTTPError(t, err)
	assert.Equal(t, `Invalid number "abc"`, httpErr.Message)

	c = newContext(http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues("0")

	err = BindAndValidate(c, &pathPayload{})
	httpErr = requireHTTPError(t, err)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "id", httpErr.Errors[0].Field)
}
