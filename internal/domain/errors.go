package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrValidation  = errors.New("validation failed")
	ErrComputation = errors.New("computation failed")
)

// Error codes
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeComputation = "COMPUTATION_ERROR"
)

// DomainError carries a machine code and the message shown to API callers.
// Err is one of the sentinels above so callers can match with errors.Is.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError builds e.g. "Configuration not found: 42".
func NewNotFoundError(resource, id string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
		Err:     ErrNotFound,
	}
}

func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
		Err:     ErrValidation,
	}
}

func NewComputationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeComputation,
		Message: msg,
		Err:     ErrComputation,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
