package domain

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var fieldMessages = map[string]string{
	"activity_name":    "Activity name is required",
	"duration_minutes": "Duration must be at least 1 minute",
	"activity_date":    "Invalid date format",
}

var tagMessages = map[string]string{
	"duration_minutes.max": "Duration cannot exceed 1440 minutes",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("activity_date", func(fl validator.FieldLevel) bool {
		return ValidDate(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidDate reports whether value is a YYYY-MM-DD string naming a real calendar date.
func ValidDate(value string) bool {
	if !datePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// Validate checks the input schema and returns ValidationErrors keyed by JSON field name.
func (in ActivityInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := tagMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = fieldMessages[fe.Field()]
		}
		if !ok {
			msg = "failed " + fe.Tag() + " validation"
		}
		out[fe.Field()] = msg
	}
	return out
}

// FieldError builds ValidationErrors for a single field that could not be decoded.
func FieldError(field string) ValidationErrors {
	msg, ok := fieldMessages[field]
	if !ok {
		msg = "invalid value"
	}
	return ValidationErrors{field: msg}
}
