// internal/form/validate.go
//
// formrelay – JSON payload validation.
//
// Context
//   Public endpoints receive JSON bodies.  Request types declare their rules
//   with go-playground/validator tags (`validate:"required,max=100"`).  This
//   file runs the validator and turns its errors into []ErrorField keyed by
//   the JSON field name, so clients can highlight exact issues.
//
// Workflow
//   •  Bind (submit.go) decodes, normalizes, and calls Validate.
//   •  Validate returns nil or a *ValidationError.  Callers treat it as a user
//      error (422), never a 500.
//
// Notes
//   Length rules (`min`, `max`) count runes, not bytes.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// ErrorField describes a single validation failure.
type ErrorField struct {
	Name    string `json:"field"`
	Message string `json:"message"`
}

// ValidationError wraps []ErrorField and satisfies the error interface.
type ValidationError struct{ Fields []ErrorField }

func (ve *ValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		parts[i] = f.Name + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err to a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

var v = func() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names ("project_type"), not Go names ("ProjectType").
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return val
}()

// Validate checks dst against its `validate` tags.
func Validate(dst any) error {
	err := v.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]ErrorField, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, ErrorField{Name: fe.Field(), Message: message(fe)})
	}
	return out
}

// message maps a failed rule to a user-facing sentence.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	default:
		return "Invalid input."
	}
}
