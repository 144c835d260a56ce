package services

import (
	"errors"

	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/utils"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrForbidden          = errors.New("you are not allowed to access this resource")
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrDuplicateAccount   = errors.New("An account with this email or username already exists")
	ErrPastDate           = errors.New("Appointment date must be in the future.")
	ErrSlotUnavailable    = errors.New("Selected slot is no longer available")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrValidation         = errors.New("validation failed")
)

// ValidationError carries a message meant for the user. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func validationError(err error) error {
	return invalid(utils.FormatValidationError(err))
}

// validateStruct runs tag validation and converts failures to ValidationError.
func validateStruct(v interface{}) error {
	if err := utils.Validate(v); err != nil {
		return validationError(err)
	}
	return nil
}
