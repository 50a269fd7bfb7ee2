package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/deppfellow/qrtrack/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads that validate themselves,
// typically by calling Struct on their own tags.
type Validatable interface {
	Validate() error
}

// Messenger lets a payload choose the client message shown when it fails
// validation. Payloads without it get "Validation failed".
type Messenger interface {
	ValidationMessage() string
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
//  1. c.Bind fills payload from path params, query (GET/DELETE) and body.
//  2. payload.Validate applies the rules.
//  3. Either failure becomes a 400 *errs.HTTPError. A payload that is a
//     Messenger keeps its own message for bind failures too, with the
//     decoder's complaint as the only field error.
//
// payload must be a pointer to a freshly allocated struct; Bind leaves fields
// absent from the request untouched.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		msg := bindErrorMessage(err)
		if m, ok := payload.(Messenger); ok {
			return errs.NewBadRequestError(m.ValidationMessage(), true, nil, []errs.FieldError{{Error: msg}}, nil)
		}
		return errs.NewBadRequestError(msg, false, nil, nil, nil)
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		msg := "Validation failed"
		if m, ok := payload.(Messenger); ok {
			msg = m.ValidationMessage()
		}
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

// bindErrorMessage extracts a client-safe message from a bind failure.
func bindErrorMessage(err error) string {
	// Path and query params fail inside strconv.
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return fmt.Sprintf("Invalid number %q", numErr.Num)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request body"
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) []errs.FieldError {
	if err := v.Validate(); err != nil {
		return extractValidationErrors(err)
	}
	return nil
}

func extractValidationErrors(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: describe(fe),
		})
	}

	return fieldErrors
}

// describe turns a validator tag failure into a short human message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
		}
		return fe.Tag()
	}
}
