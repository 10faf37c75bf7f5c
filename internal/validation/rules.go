// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/keywell/vault/internal/errors"
)

var (
	// secretNameRegex restricts secret names to a safe identifier alphabet.
	secretNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-./]*$`)

	// globPatternRegex is the secret name alphabet plus the * and ? wildcards.
	globPatternRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-./*?]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// SecretName validates that a string is a well-formed secret name.
var SecretName = validation.NewStringRuleWithError(
	func(s string) bool {
		return secretNameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_secret_name",
		"must start with a letter or digit and contain only letters, digits, '_', '-', '.' or '/'",
	),
)

// GlobPattern validates that a string is a well-formed secret name pattern.
var GlobPattern = validation.NewStringRuleWithError(
	func(s string) bool {
		return globPatternRegex.MatchString(s)
	},
	validation.NewError(
		"validation_glob_pattern",
		"must contain only letters, digits, '_', '-', '.', '/', '*' or '?'",
	),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
