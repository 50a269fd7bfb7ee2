// Package errs defines the error shapes the API returns to clients.
//
// Every failure that reaches the HTTP layer is turned into an *HTTPError so
// clients always receive the same JSON structure, with at least a message:
//
//	{"code":"BAD_REQUEST","message":"Start & End required","status":400,...}
//
// Field-level problems travel in Errors; the underlying cause of a server
// error never does.
package errs

import "strings"

// FieldError is a single field-level validation problem.
//
//	{ "field": "startPoint", "error": "is required" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Action is an optional follow-up instruction for the client.
type Action struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// HTTPError is the single client-facing error type.
//
// Fields:
//   - Code: machine-friendly code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message, safe to show.
//   - Status: HTTP status code.
//   - Override: true when the frontend should display Message verbatim.
//   - Errors: per-field validation errors.
//   - Action: optional client instruction.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

// Error returns the client message.
func (e *HTTPError) Error() string {
	return e.Message
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
