package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxUsernameLength matches the login name column limit
	MaxUsernameLength = 150
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes
	MaxPasswordLength = 72
	// MaxDescriptionLength caps task descriptions
	MaxDescriptionLength = 10000
	// MaxMinutes caps a single task at 10 million minutes, well inside the
	// integer range a spreadsheet cell stores exactly
	MaxMinutes = 10000000
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Validator provides common validation utilities
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the rune count of the trimmed string is within [min, max]
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidUsername checks that a login name uses letters, digits and @ . + - _ only
func (v *Validator) IsValidUsername(name string) bool {
	return usernamePattern.MatchString(name)
}

// IsValidID checks if an identifier is valid (positive)
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidMinutes checks that a time spent value is within [0, MaxMinutes]
func (v *Validator) IsValidMinutes(minutes int) bool {
	return minutes >= 0 && minutes <= MaxMinutes
}

// HasControlCharacters reports whether s contains a control character other
// than tab, carriage return or line feed. Those cannot be stored in xlsx cells.
func (v *Validator) HasControlCharacters(s string) bool {
	for _, r := range s {
		switch {
		case r == '\t' || r == '\r' || r == '\n':
		case r < 0x20 || r == 0x7f:
			return true
		case r == 0xfffe || r == 0xffff:
			return true
		}
	}
	return false
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
