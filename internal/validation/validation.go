// Package validation checks request payloads and reports field-level failures.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"devconnect/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so clients can map errors to inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// bcrypt only accepts 72 bytes, and max counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= limit
	})
	return v
}

// Struct validates s against its `validate` tags. Failures are returned as a
// ValidationFailed AppError carrying one message per rejected field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return models.NewValidationError(fields[0].Message, fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", label(fe.Field()))
	case "email":
		return "Please include a valid email"
	case "min":
		if fe.Field() == "password" {
			return fmt.Sprintf("Please enter a password with %s or more characters", fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", label(fe.Field()), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label(fe.Field()), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label(fe.Field()), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label(fe.Field()))
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", label(fe.Field()), label(fe.Param()))
	default:
		return fmt.Sprintf("%s is invalid", label(fe.Field()))
	}
}

// label turns a json field name like field_of_study into "Field of study".
func label(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
