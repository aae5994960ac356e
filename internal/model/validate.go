package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of s and returns an ErrInvalidInput domain
// error describing every failing field.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			messages := make([]string, 0, len(validationErrors))
			for _, fieldError := range validationErrors {
				messages = append(messages, formatValidationError(fieldError))
			}
			return NewInvalidInput(strings.Join(messages, "; "), err)
		}
		return NewInvalidInput(err.Error(), err)
	}
	return nil
}

func formatValidationError(err validator.FieldError) string {
	field := strings.ToLower(err.Field())

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
