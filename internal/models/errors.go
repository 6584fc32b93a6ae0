package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrInvalidID        = errors.New("invalid ID format")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrNoVariance       = errors.New("cannot regress: no variance in predictor")
	ErrNegativeWeight   = errors.New("weight components must be non-negative")
	ErrTeamNotRated     = errors.New("team has no efficiency profile for season")
)

// ValidationError carries a machine-readable code alongside the message
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
