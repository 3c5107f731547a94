package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "worklog/internal/errors"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// ValidateDescription validates a task description for creation or update
func (tv *TaskValidator) ValidateDescription(description string) error {
	validationError := NewValidationError()

	trimmed := tv.validator.TrimAndValidateString(description)
	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("description")
		return validationError
	}

	if !tv.validator.IsValidStringLength(trimmed, 1, MaxDescriptionLength) {
		validationError.AddInvalidLengthError("description", trimmed, 1, MaxDescriptionLength)
		return validationError
	}

	if !utf8.ValidString(trimmed) || tv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("description", trimmed)
		return validationError
	}

	return nil
}

// ValidateMinutes validates a time spent value
func (tv *TaskValidator) ValidateMinutes(minutes int) error {
	if !tv.validator.IsValidMinutes(minutes) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("time_spent", minutes, fmt.Sprintf("must be between 0 and %d minutes", MaxMinutes))
		return validationError
	}
	return nil
}

// ValidateTask validates a description and time spent together, reporting
// every failing field.
func (tv *TaskValidator) ValidateTask(description string, minutes int) error {
	validationError := NewValidationError()
	validationError.Merge(tv.ValidateDescription(description))
	validationError.Merge(tv.ValidateMinutes(minutes))

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	if !tv.validator.IsValidID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("task_id", id, "must be a positive integer")
		return validationError
	}
	return nil
}

// GetValidDescription returns a cleaned description if valid
func (tv *TaskValidator) GetValidDescription(description string) (string, error) {
	if err := tv.ValidateDescription(description); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(description), nil
}

// ParseMinutes converts raw user input into whole minutes. Anything that
// is not a base-10 integer is InvalidInput.
func ParseMinutes(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	minutes, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, apperrors.NewInvalidInputError("time_spent", raw, "must be a whole number of minutes")
	}
	return minutes, nil
}

// ParseTaskID converts a raw path or argument value into a task id
func ParseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidInputError("task_id", raw, "must be a positive integer")
	}
	return id, nil
}
