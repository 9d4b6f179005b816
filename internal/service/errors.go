package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrBookNotFound       = errors.New("book not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyModerated   = errors.New("book has already been moderated")
	ErrBookNotApproved    = errors.New("book is not approved for reading")
)

// ValidationError rejects bad input before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationFailed(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
