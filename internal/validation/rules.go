// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/envguard/internal/errors"
)

var (
	// nameRegex constrains environment names and variable keys to the characters
	// that survive shell usage and .env files without quoting.
	nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// Identifier validates environment names and variable keys.
var Identifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return nameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_identifier",
		"must start with a letter or digit and contain only letters, digits, '.', '_' or '-'",
	),
)

// RotationPeriod validates a rotation period in days.
type RotationPeriod struct{}

// Validate checks that the value is a strictly positive day count.
func (RotationPeriod) Validate(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case int:
		if v <= 0 {
			return validation.NewError("validation_rotation_period", "rotation period must be a positive number of days")
		}
	case *int:
		if v != nil && *v <= 0 {
			return validation.NewError("validation_rotation_period", "rotation period must be a positive number of days")
		}
	default:
		return validation.NewError("validation_rotation_period", "rotation period must be an integer")
	}
	return nil
}

// PasswordStrength validates that a master password meets the minimum length.
type PasswordStrength struct {
	MinLength int
}

// Validate checks if the password meets the configured requirements.
func (p PasswordStrength) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_strength", "password must be a string")
	}
	if len(s) < p.MinLength {
		return validation.NewError("validation_password_min_length", "password is too short")
	}
	return nil
}
