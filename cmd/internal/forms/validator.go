package forms

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
	"time"
	"visuall/cmd/internal/utils"
	"visuall/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries one human-readable message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var labels = map[string]string{
	"title":           "Title",
	"doctorName":      "Doctor name",
	"specialty":       "Specialty",
	"date":            "Date",
	"time":            "Time",
	"location":        "Location",
	"notes":           "Notes",
	"name":            "Name",
	"email":           "Email",
	"password":        "Password",
	"confirmPassword": "Password confirmation",
	"code":            "Confirmation code",
	"phone":           "Phone",
	"subject":         "Subject",
	"message":         "Message",
	"fontSize":        "Font size",
	"lineHeight":      "Line height",
	"searchTerm":      "Search term",
}

type Validator struct {
	validate *validator.Validate
}

// NewValidator wires the custom rules. now and loc decide what "today" is
// for appointment dates; strictSpecialty limits specialties to Specialties.
func NewValidator(now func() time.Time, loc *time.Location, strictSpecialty bool) *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" && name != "-" {
			return name
		}
		return f.Name
	})
	registerValidators(validate, now, loc, strictSpecialty)
	return &Validator{validate: validate}
}

func registerValidators(validate *validator.Validate, now func() time.Time, loc *time.Location, strictSpecialty bool) {
	_ = validate.RegisterValidation("isodate", validators.IsIsoDate)
	_ = validate.RegisterValidation("clocktime", validators.IsClockTime)
	_ = validate.RegisterValidation("phone", validators.IsPhone)
	_ = validate.RegisterValidation("notpast", validators.NotPast(now, loc))
	_ = validate.RegisterValidation("specialty", func(fl validator.FieldLevel) bool {
		return !strictSpecialty || slices.Contains(Specialties, fl.Field().String())
	})
}

// Struct trims the strings of form in place, then checks every rule.
// It returns a *ValidationError listing all invalid fields, or nil.
func (v *Validator) Struct(form any) error {
	utils.Sanitize(form)

	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

func (v *Validator) Reminder(form *ReminderForm) error {
	return v.Struct(form)
}

func message(fe validator.FieldError) string {
	label, ok := labels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min", "gte":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max", "lte":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "email":
		return "Please enter a valid email"
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "isodate":
		return fmt.Sprintf("%s must use the YYYY-MM-DD format", label)
	case "notpast":
		return "The date cannot be earlier than today"
	case "clocktime":
		return fmt.Sprintf("%s must use the HH:MM format", label)
	case "phone":
		return "Phone may contain only digits, spaces, parentheses, hyphens and plus signs"
	case "specialty":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(Specialties, ", "))
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
