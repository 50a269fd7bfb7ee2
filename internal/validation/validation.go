// Package validation binds request data and validates it.
//
// Request payloads declare their rules as `validate:"..."` struct tags and
// implement Validatable. BindAndValidate turns every failure into a 400
// *errs.HTTPError with field-level details keyed by the JSON field name.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// instance returns the shared validator. Field names in errors come from
// the json tag (or param tag for path parameters) so they match what the
// client sent.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "param", "query"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
	})
	return validate
}

// Struct validates v against its struct tags.
func Struct(v any) error {
	return instance().Struct(v)
}
