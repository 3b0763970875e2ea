// Package validation validates request payloads and reports field-level errors.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid field using its JSON name.
type FieldError struct {
	Field   string
	Message string
}

// Error is returned when a payload fails validation. It carries every offending field.
type Error struct {
	Fields []FieldError
}

// NewError builds an Error from field errors.
func NewError(fields ...FieldError) *Error {
	return &Error{Fields: fields}
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "must be at least %s characters long",
	"max":      "must be no longer than %s characters",
	"url":      "must be a valid URL",
	"http_url": "must be a valid http(s) URL",
	"oneof":    "must be one of %s",
	"e164":     "must be a phone number in E.164 format",
}

func message(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return "is invalid: " + e.Tag()
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, e.Param())
	}
	return msg
}

// Struct validates s against its `validate` tags. It returns *Error on failure.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: e.Field(), Message: message(e)})
	}
	return NewError(out...)
}

// DecodeStrict decodes a JSON object into dst, a pointer to struct.
// Keys that do not map to a json-tagged field of dst are reported as field errors.
func DecodeStrict(data []byte, dst any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return NewError(FieldError{Field: "body", Message: "is required"})
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewError(FieldError{Field: "body", Message: "must be a JSON object"})
	}

	allowed := jsonFields(dst)
	var unknown []string
	for k := range raw {
		if _, ok := allowed[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		out := make([]FieldError, 0, len(unknown))
		for _, k := range unknown {
			out = append(out, FieldError{Field: k, Message: "is not allowed"})
		}
		return NewError(out...)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return NewError(FieldError{Field: typeErr.Field, Message: "must be a " + typeErr.Type.String()})
		}
		return NewError(FieldError{Field: "body", Message: "must be a JSON object"})
	}
	return nil
}

// jsonFields returns the set of JSON keys accepted by the struct dst points to.
func jsonFields(dst any) map[string]struct{} {
	t := reflect.TypeOf(dst)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = struct{}{}
	}
	return out
}
