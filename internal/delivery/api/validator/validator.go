// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator validates bound request bodies using struct tags.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *CustomValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	// The tag is a constant; registration only fails on an empty name.
	if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	return &CustomValidator{validate: validate}
}

// maxBytes bounds a string by its UTF-8 length. The built-in max tag counts
// runes, which is the wrong unit for bcrypt input.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validate.Struct(i); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// FailedFields lists the JSON names of the fields that failed validation.
func FailedFields(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields = append(fields, fieldErr.Field())
	}

	return fields
}

// FailedOn reports whether field failed the given tag.
func FailedOn(err error, field, tag string) bool {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return false
	}

	for _, fieldErr := range validationErrs {
		if fieldErr.Field() == field && fieldErr.Tag() == tag {
			return true
		}
	}

	return false
}
