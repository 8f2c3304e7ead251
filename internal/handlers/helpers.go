package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// optional normalizes a decoded JSON field: nil or empty means "not supplied".
func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// optionalForm normalizes a form value: empty means "not supplied".
func optionalForm(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// validationMessages flattens validator errors into a field -> message map.
func validationMessages(err error) map[string]string {
	messages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		messages["request"] = err.Error()
		return messages
	}
	for _, e := range validationErrors {
		messages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return messages
}
