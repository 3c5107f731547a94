package errors

import (
	"fmt"
)

// ErrorType says who is at fault: the caller (validation, input, identity,
// rights, conflicts), missing data, or the store.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypePermission
	ErrorTypeUnauthenticated
	ErrorTypeConflict
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeValidation:      "validation",
	ErrorTypeNotFound:        "not_found",
	ErrorTypeDatabase:        "database",
	ErrorTypeInvalidInput:    "invalid_input",
	ErrorTypePermission:      "permission",
	ErrorTypeUnauthenticated: "unauthenticated",
	ErrorTypeConflict:        "conflict",
}

// String is the name used as the error text prefix
func (et ErrorType) String() string {
	if name, ok := errorTypeNames[et]; ok {
		return name
	}
	return "unknown"
}

// AppError is returned by services and the store. Code is stable and sent
// to API clients; Context holds per-field details, e.g. which task field
// failed validation.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	msg := e.Type.String() + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code, so callers can
// compare against a template such as &AppError{Type: ErrorTypePermission, Code: "PERMISSION_DENIED"}.
func (e *AppError) Is(target error) bool {
	appErr, ok := target.(*AppError)
	return ok && e.Type == appErr.Type && e.Code == appErr.Code
}

// IsType checks the category only
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext attaches a detail and returns e for chaining
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext looks up a detail
func (e *AppError) GetContext(key string) (interface{}, bool) {
	value, exists := e.Context[key]
	return value, exists
}

// Fields returns the per-field messages of a validation failure, or nil for
// every other type.
func (e *AppError) Fields() map[string]string {
	if e.Type != ErrorTypeValidation || len(e.Context) == 0 {
		return nil
	}
	fields := make(map[string]string, len(e.Context))
	for key, value := range e.Context {
		if msg, ok := value.(string); ok {
			fields[key] = msg
		}
	}
	return fields
}
