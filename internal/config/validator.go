// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Custom rules
// ------------
//   • dsn_template – the DSN holds at most one `%s` verb and no other verbs.
//     A DSN with a `%s` and no password is rejected by the struct-level check.

package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = func() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	_ = val.RegisterValidation("dsn_template", func(fl validator.FieldLevel) bool {
		dsn := fl.Field().String()
		verbs := strings.Count(dsn, "%")
		esc := strings.Count(dsn, "%%")
		return verbs-2*esc == strings.Count(dsn, "%s") && strings.Count(dsn, "%s") <= 1
	})
	val.RegisterStructValidation(func(sl validator.StructLevel) {
		db := sl.Current().Interface().(Database)
		if strings.Contains(db.DSN, "%s") && db.Password == "" {
			sl.ReportError(db.Password, "Password", "password", "required_with_template", "")
		}
	}, Database{})
	return val
}()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
