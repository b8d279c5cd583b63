// Package validator wraps go-playground/validator with the rules shared by
// pipeline settings and campaign requests.
package validator

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// EmailPattern is the loose address check used for test inboxes and
// campaign email lists.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TimePattern matches a 24h HH:mm schedule time.
var TimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Validator wraps a configured *validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the custom tags registered:
//
//	simple_email  value matches EmailPattern
//	notblank      value is non-empty after trimming
//	hhmm          value matches TimePattern
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return EmailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return TimePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

var (
	defaultOnce sync.Once
	defaultVal  *Validator
)

// Default returns a process-wide Validator.
func Default() *Validator {
	defaultOnce.Do(func() { defaultVal = New() })
	return defaultVal
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// FieldErrors extracts the per-field failures from err, or nil when err is
// not a validation error.
func FieldErrors(err error) validator.ValidationErrors {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
