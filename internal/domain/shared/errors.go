// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Infrastructure errors
	ErrUnavailable = errors.New("service unavailable")
	ErrTimeout     = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "commitment", "practicelog", "practice"
	Op      string // Operation that failed, e.g., "Join", "Upsert"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Practice catalog errors
var (
	ErrPracticeNotFound = NewDomainError("practice", "Find", ErrNotFound, "practice not found")
	ErrPracticeExists   = NewDomainError("practice", "Create", ErrAlreadyExists, "practice already exists")
	ErrPracticeDisabled = NewDomainError("practice", "CheckStatus", ErrInvalidState, "practice is disabled")
	ErrPracticeInUse    = NewDomainError("practice", "Delete", ErrInvalidState, "practice has commitments referencing it")
	ErrInvalidTracking  = NewDomainError("practice", "Validate", ErrInvalidInput, "invalid tracking type")
)

// Commitment errors
var (
	ErrCommitmentNotFound = NewDomainError("commitment", "Find", ErrNotFound, "commitment not found")
	ErrCommitmentExists   = NewDomainError("commitment", "Join", ErrAlreadyExists, "an active commitment for this practice already exists")
	ErrCommitmentArchived = NewDomainError("commitment", "SetStatus", ErrStateTransition, "archived commitments cannot change status")
	ErrInvalidStatus      = NewDomainError("commitment", "Validate", ErrInvalidInput, "invalid commitment status")
	ErrDateOrder          = NewDomainError("commitment", "Validate", ErrValidation, "end date must not precede start date")
)

// Log ledger errors
var (
	ErrLogNotFound         = NewDomainError("practicelog", "Find", ErrNotFound, "log entry not found")
	ErrMissingNumericValue = NewDomainError("practicelog", "Validate", ErrValidation, "numeric practices require a finite value")
)

// Analytics errors
var (
	ErrInvalidWindow  = NewDomainError("analytics", "Validate", ErrValidation, "window end precedes window start")
	ErrWindowTooLarge = NewDomainError("analytics", "BuildGrid", ErrValidation, "window exceeds the maximum heatmap span")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is an "already exists" conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsInvalidState checks if the error is a lifecycle/state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStateTransition)
}
