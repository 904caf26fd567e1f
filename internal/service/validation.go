package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"jobboard/internal/repository"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so error details match the request payload.
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// validateStruct runs the model's validate tags and flattens failures into a
// *ValidationError keyed by JSON field name.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// mergePatch applies a JSON-keyed patch onto a copy of existing and returns
// the merged value together with a column patch holding the typed values.
// Keys naming relations or unknown fields are rejected with ErrInvalidField;
// values of the wrong JSON type are reported as a *ValidationError.
func mergePatch[T any](existing *T, patch map[string]any) (*T, map[string]any, error) {
	if len(patch) == 0 {
		return nil, nil, repository.ErrEmptyPayload
	}

	index := scalarFields(reflect.TypeOf(*existing))
	for k := range patch {
		if _, ok := index[k]; !ok {
			return nil, nil, fmt.Errorf("%w: %q cannot be updated", repository.ErrInvalidField, k)
		}
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, nil, fmt.Errorf("encode patch: %w", err)
	}
	merged := *existing
	if err := json.Unmarshal(raw, &merged); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, nil, newValidationError(typeErr.Field, "must be of type "+typeErr.Type.String())
		}
		return nil, nil, fmt.Errorf("decode patch: %w", err)
	}

	rv := reflect.ValueOf(merged)
	typed := make(map[string]any, len(patch))
	for k := range patch {
		typed[k] = rv.FieldByIndex(index[k]).Interface()
	}
	return &merged, typed, nil
}

// scalarFields maps JSON names to field index paths, descending into
// embedded structs and skipping pointers, slices and nested structs.
func scalarFields(t reflect.Type) map[string][]int {
	out := make(map[string][]int)
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			path := append(append([]int{}, prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, path)
				continue
			}
			if !f.IsExported() {
				continue
			}
			switch f.Type.Kind() {
			case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
				continue
			case reflect.Struct:
				// time.Time is the only struct column the models carry.
				if f.Type.PkgPath() != "time" {
					continue
				}
			}
			if name := jsonName(f); name != "" {
				out[name] = path
			}
		}
	}
	walk(t, nil)
	return out
}

// readOnly rejects patch keys that clients may not set directly.
func readOnly(patch map[string]any, keys ...string) error {
	for _, k := range keys {
		if _, ok := patch[k]; ok {
			return fmt.Errorf("%w: %q cannot be updated", repository.ErrInvalidField, k)
		}
	}
	return nil
}
