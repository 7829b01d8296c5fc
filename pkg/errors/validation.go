package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// MaxIDLength bounds visualization and state ids.
const MaxIDLength = 128

var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID checks a visualization or state id. Ids become file names and
// database keys, so they are restricted to a safe alphabet and may not
// traverse directories.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}
	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "id contains control characters")
		}
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "id cannot contain path traversal sequences (..)")
	}
	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid id: %q", id)
	}
	return nil
}

// ValidateFormat checks that format is one of supported.
func ValidateFormat(format string, supported []string) error {
	if !slices.Contains(supported, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(supported, ", "))
	}
	return nil
}

var languageRegex = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)

// ValidateLanguage accepts "" (the default language) or a BCP 47 style tag.
func ValidateLanguage(lang string) error {
	if lang == "" || languageRegex.MatchString(lang) {
		return nil
	}
	return New(ErrCodeInvalidInput, "invalid language tag %q", lang)
}
