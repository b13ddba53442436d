// internal/form/submit.go
//
// formrelay – consolidated Bind helper.
//
// Context
//   Most handlers want one call that reads the JSON body, trims what needs
//   trimming, and validates.  Bind provides that so handler code stays
//   terse.  Malformed JSON is reported as a ValidationError too, so every
//   client-side mistake maps to the same status.
//
//------------------------------------------------------------------------------

package form

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes bounds a submission body.
const MaxBodyBytes = 64 << 10

// Normalizer is implemented by request types that clean their fields (for
// example trimming whitespace) before validation.
type Normalizer interface {
	Normalize()
}

// Bind decodes r's JSON body into dst, normalizes, and validates.  On any
// client error it returns a *ValidationError.
func Bind(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		return &ValidationError{Fields: []ErrorField{{Name: "body", Message: decodeMessage(err)}}}
	}
	if dec.More() {
		return &ValidationError{Fields: []ErrorField{{Name: "body", Message: "Request body must contain a single JSON object."}}}
	}

	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	return Validate(dst)
}

func decodeMessage(err error) string {
	var (
		tooBig  *http.MaxBytesError
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is empty."
	case errors.As(err, &tooBig):
		return "Request body is too large."
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return "Field " + typeErr.Field + " has the wrong type."
		}
		return "Request body must be a JSON object."
	default:
		return "Malformed JSON body."
	}
}
