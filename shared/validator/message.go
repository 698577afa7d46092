package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required": "{field} is required",
	"notblank": "{field} must not be blank",
	"max":      "{field} must be at most {param} characters",
	"min":      "{field} must be at least {param} characters",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"oneof":    "{field} must be one of {param}",
	"date":     "{field} must be a date formatted as YYYY-MM-DD",
}

// message reports the first field error that has a known wording.
func message(err error) string {
	var fieldErrors val.ValidationErrors

	if !errors.As(err, &fieldErrors) {
		return err.Error()
	}

	for _, fieldError := range fieldErrors {
		if msg, ok := render(fieldError); ok {
			return msg
		}
	}

	return fieldErrors.Error()
}

func render(fieldError val.FieldError) (string, bool) {
	template, ok := messages[fieldError.Tag()]
	if !ok {
		return "", false
	}

	return strings.NewReplacer("{field}", fieldError.Field(), "{param}", fieldError.Param()).Replace(template), true
}
