// Package validation wraps go-playground/validator with the engine's enum
// rules and maps failures onto model.ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/viant/contentflow/model"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
			return model.ContentType(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
			return model.Platform(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
			return model.Priority(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return model.Status(fl.Field().String()).Valid()
		})
	})
	return validate
}

// Struct validates v; the error wraps model.ErrValidation.
func Struct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, describe(fe))
	}
	return fmt.Errorf("%w: %s", model.ErrValidation, strings.Join(messages, "; "))
}

// Failf returns a validation error with a formatted message.
func Failf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", model.ErrValidation, fmt.Sprintf(format, args...))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx != -1 {
		field = field[idx+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s exceeds %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s is not a valid url", field)
	case "email":
		return fmt.Sprintf("%s is not a valid email", field)
	case "oneof", "content_type", "platform", "priority", "status":
		return fmt.Sprintf("%s has unsupported value %v", field, fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
