// Package validation wraps go-playground/validator with readable error messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StringRule reports whether a string field value is acceptable.
type StringRule func(string) bool

// Validator validates structs by their `validate` tags.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the built-in notblank tag plus the given custom string rules.
// It panics if a rule cannot be registered, which only happens for an invalid tag name.
func New(rules map[string]StringRule) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return toSnake(fld.Name)
		}
		return name
	})
	all := map[string]StringRule{
		"notblank": func(s string) bool { return strings.TrimSpace(s) != "" },
	}
	for tag, rule := range rules {
		all[tag] = rule
	}
	for tag, rule := range all {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			return rule(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("validation: register %q: %v", tag, err))
		}
	}
	return &Validator{validate: v}
}

// Struct validates s and returns the first failures joined into one error.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return format(verrs)
	}
	return err
}

func format(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		var msg string
		switch e.Tag() {
		case "required", "notblank":
			msg = fmt.Sprintf("%s is required", field)
		case "email":
			msg = fmt.Sprintf("%s must be a valid email address", field)
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		default:
			msg = fmt.Sprintf("%s has invalid value %q", field, fmt.Sprint(e.Value()))
		}
		messages = append(messages, msg)
	}
	return errors.New(strings.Join(messages, "; "))
}

// toSnake converts a Go field name to snake_case, keeping acronyms together ("DeviceID" -> "device_id").
func toSnake(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}
