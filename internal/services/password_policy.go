package services

import (
	"errors"
	"strings"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

var (
	ErrPasswordMissing = errors.New("password is required")
	ErrPasswordTooLong = errors.New("password is too long")
)

func ValidatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrPasswordMissing
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}
