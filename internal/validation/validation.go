// Package validation checks user-supplied entities before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var defaultValidator = validator.New()

// FieldError describes one failed constraint.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// Error collects the field errors of one validation pass.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", f.Field, f.Tag, f.Param))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", f.Field, f.Tag))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Required builds an Error for a single missing field.
func Required(field string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Tag: "required"}}}
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	err := defaultValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
