// Package settings decodes and validates the policy settings document.
//
// Validation runs in three stages, stopping at the first failure: the raw
// document is checked against the JSON Schema reflected from the settings
// type, the decoded value is checked against its `validate` struct tags,
// and finally its Validate method runs if it implements ports.Validatable.
package settings

import (
	"bytes"
	stdErrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/warden-dev/policy-sdk-go/application/response"
	"github.com/warden-dev/policy-sdk-go/domain/entities"
	"github.com/warden-dev/policy-sdk-go/domain/errors"
	"github.com/warden-dev/policy-sdk-go/domain/ports"
	"github.com/warden-dev/policy-sdk-go/wireformat"
)

// validate is shared; validator caches struct metadata per type.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// IsEmpty reports whether raw carries no settings: no bytes, or JSON null.
func IsEmpty(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode decodes raw into S. A policy deployed without settings receives
// the zero value of S.
func Decode[S any](raw []byte) (S, error) {
	var s S
	if IsEmpty(raw) {
		return s, nil
	}
	if err := wireformat.JSON.Unmarshal(raw, &s); err != nil {
		return s, &errors.SettingsError{Err: err}
	}
	return s, nil
}

// Check runs tag validation and then Validatable on a decoded value. A nil
// pointer has nothing to check.
func Check[S any](s S) error {
	if isNilPointer(s) {
		return nil
	}
	if isStruct(reflect.TypeFor[S]()) {
		if err := validate.Struct(s); err != nil {
			var fieldErrs validator.ValidationErrors
			if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				fe := fieldErrs[0]
				return &errors.SettingsError{Field: fieldPath(fe.Namespace()), Err: fieldError(fe)}
			}
			return &errors.SettingsError{Err: err}
		}
	}

	var target any = &s
	if v, ok := target.(ports.Validatable); ok {
		return wrapSemantic(v.Validate())
	}
	if v, ok := any(s).(ports.Validatable); ok {
		return wrapSemantic(v.Validate())
	}
	return nil
}

// Load decodes raw and runs every validation stage.
func Load[S any](raw []byte) (S, error) {
	if !IsEmpty(raw) {
		if err := checkSchema(reflect.TypeFor[S](), raw); err != nil {
			var zero S
			return zero, err
		}
	}
	s, err := Decode[S](raw)
	if err != nil {
		return s, err
	}
	if err := Check(s); err != nil {
		return s, err
	}
	return s, nil
}

// Validate is the validate_settings outcome for raw. It never fails: every
// problem becomes an invalid response carrying the reason.
func Validate[S any](raw []byte) entities.SettingsValidationResponse {
	if _, err := Load[S](raw); err != nil {
		return response.RejectSettings(err.Error())
	}
	return response.AcceptSettings()
}

func wrapSemantic(err error) error {
	if err == nil {
		return nil
	}
	var se *errors.SettingsError
	if stdErrors.As(err, &se) {
		return err
	}
	return &errors.SettingsError{Err: err}
}

func isStruct(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldError(fe validator.FieldError) error {
	if fe.Param() != "" {
		return stdErrors.New("failed on the '" + fe.Tag() + "=" + fe.Param() + "' rule")
	}
	return stdErrors.New("failed on the '" + fe.Tag() + "' rule")
}
