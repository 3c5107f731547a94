package validation

import "unicode/utf8"

// UserValidator validates account input
type UserValidator struct {
	validator *Validator
}

// NewUserValidator creates a new user validator
func NewUserValidator() *UserValidator {
	return &UserValidator{
		validator: NewValidator(),
	}
}

// ValidateUsername validates a login name
func (uv *UserValidator) ValidateUsername(username string) error {
	validationError := NewValidationError()

	if !uv.validator.IsNonEmptyString(username) {
		validationError.AddRequiredError("username")
		return validationError
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		validationError.AddInvalidLengthError("username", username, 0, MaxUsernameLength)
	}
	if !uv.validator.IsValidUsername(username) {
		validationError.AddInvalidCharacterError("username", username)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ValidatePassword validates a new password. The value is never echoed back.
func (uv *UserValidator) ValidatePassword(password string) error {
	validationError := NewValidationError()

	if password == "" {
		validationError.AddRequiredError("password")
		return validationError
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		validationError.AddInvalidLengthError("password", nil, MinPasswordLength, MaxPasswordLength)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}

// ValidateRegistration validates every field of a new account
func (uv *UserValidator) ValidateRegistration(username, displayName, password string) error {
	validationError := NewValidationError()
	validationError.Merge(uv.ValidateUsername(username))
	validationError.Merge(uv.ValidatePassword(password))

	if utf8.RuneCountInString(displayName) > MaxUsernameLength {
		validationError.AddInvalidLengthError("display_name", displayName, 0, MaxUsernameLength)
	}

	if validationError.HasErrors() {
		return validationError
	}
	return nil
}
