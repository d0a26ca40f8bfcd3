package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("invalid input")
	ErrInvalidInput         = ErrValidation
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotFound             = errors.New("not found")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrDuplicateAccountType = errors.New("account type already exists")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidResetToken    = errors.New("invalid reset token")
	ErrInternal             = errors.New("internal error")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (err *ValidationError) Error() string {
	return err.Message
}

func (err *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func internalError(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
