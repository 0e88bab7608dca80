// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/keeplegacy/docvault/internal/errors"
)

// contentTypeRegex matches a media type like "application/pdf" without
// parameters.
var contentTypeRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9!#$&^_.+\-]*/[a-zA-Z0-9][a-zA-Z0-9!#$&^_.+\-]*$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// UUID validates that a string is a parseable UUID.
var UUID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
})

// ContentType validates that a string is a well-formed media type.
var ContentType = validation.NewStringRuleWithError(
	func(s string) bool {
		return contentTypeRegex.MatchString(s)
	},
	validation.NewError("validation_content_type", "must be a valid media type such as application/pdf"),
)

// Classification validates a document classification value.
var Classification = validation.NewStringRuleWithError(
	func(s string) bool {
		switch s {
		case "personal", "financial", "medical", "legal":
			return true
		}
		return false
	},
	validation.NewError(
		"validation_classification",
		"must be one of: personal, financial, medical, legal",
	),
)

// AccessLevel validates a document access level value.
var AccessLevel = validation.NewStringRuleWithError(
	func(s string) bool {
		switch s {
		case "public", "read", "write", "manage", "admin":
			return true
		}
		return false
	},
	validation.NewError(
		"validation_access_level",
		"must be one of: public, read, write, manage, admin",
	),
)

// FileName validates a stored file name: not blank, no path separators, no
// traversal segments.
var FileName = validation.NewStringRuleWithError(
	func(s string) bool {
		if strings.TrimSpace(s) == "" {
			return false
		}
		if strings.ContainsAny(s, "/\\") {
			return false
		}
		return s != "." && s != ".."
	},
	validation.NewError("validation_file_name", "must be a plain file name without path separators"),
)

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
