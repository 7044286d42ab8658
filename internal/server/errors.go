// Package server provides the HTTP REST API for resumesculpt.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/uditb/resumesculpt/internal/ats"
	"github.com/uditb/resumesculpt/internal/quota"
	"github.com/uditb/resumesculpt/internal/resume"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrNoResume indicates the user has no resume on file
type ErrNoResume struct{}

func (e *ErrNoResume) Error() string {
	return "no resume uploaded. Please upload a resume first"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists   *ErrEmailAlreadyExists
		invalidCreds  *ErrInvalidCredentials
		userNotFound  *ErrUserNotFound
		noResume      *ErrNoResume
		validation    *ErrValidation
		quotaExceeded *quota.ExceededError
		invalidInput  *ats.InvalidInputError
		emptyDocument *resume.EmptyDocumentError
	)
	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &invalidCreds):
		return http.StatusUnauthorized
	case errors.As(err, &userNotFound), errors.As(err, &noResume):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalidInput), errors.As(err, &emptyDocument):
		return http.StatusBadRequest
	case errors.As(err, &quotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
