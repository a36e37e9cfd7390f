package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// String length limits
const (
	MaxFieldLength = 256
	MaxScoreLength = 32
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, maxLen int, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}

	if !utf8.ValidString(value) {
		return fmt.Errorf("%s is not valid UTF-8", fieldName)
	}
	if n := utf8.RuneCountInString(value); n > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Control characters would reach the module's argv verbatim.
	if strings.ContainsFunc(value, unicode.IsControl) {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}
