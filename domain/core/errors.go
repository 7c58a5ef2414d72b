package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound     = errors.New("resource not found")
	ErrPairNotFound = fmt.Errorf("%w: pair label", ErrNotFound)

	// Data availability errors, fatal for a lens/dataset run
	ErrNoGroups   = errors.New("no parameter groups available")
	ErrNoArchives = errors.New("no estimator archives found")
	ErrNoData     = errors.New("no mock results loaded")

	// Validation errors
	ErrInvalidRemapping = errors.New("invalid remapping")
	ErrInvalidLabel     = errors.New("invalid label")
	ErrLabelMismatch    = errors.New("label mismatch")
	ErrMalformedArchive = errors.New("malformed mock archive")
	ErrMalformedTable   = errors.New("malformed table")
)

// NewNotFoundError builds a not-found error for a named resource
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
}

// NewRemappingError explains which bijection rule was violated
func NewRemappingError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRemapping, reason)
}

// NewPairNotFoundError reports a pair label absent from the source data
func NewPairNotFoundError(label string) error {
	return fmt.Errorf("%w %q", ErrPairNotFound, label)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDataAvailabilityError reports the conditions that terminate a covariance run
func IsDataAvailabilityError(err error) bool {
	return errors.Is(err, ErrNoGroups) ||
		errors.Is(err, ErrNoArchives) ||
		errors.Is(err, ErrNoData)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRemapping) ||
		errors.Is(err, ErrInvalidLabel) ||
		errors.Is(err, ErrLabelMismatch)
}
