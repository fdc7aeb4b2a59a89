package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNickname is returned when another user already holds the nickname (any case).
	ErrDuplicateNickname = errors.New("a user with this nickname already exists")
	// ErrDuplicateEmail is returned when another user already holds the email (any case).
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalid is wrapped by every ValidationError.
	ErrInvalid = errors.New("invalid record")
)

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// IsConflict reports whether err is a nickname or email uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateNickname) || errors.Is(err, ErrDuplicateEmail)
}
