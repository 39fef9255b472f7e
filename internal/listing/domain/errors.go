package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidListing   = errors.New("invalid listing data")
	ErrEmptySearchQuery = errors.New("search query is empty")
	ErrNoResults        = errors.New("no listings matched")
	ErrInvalidFilter    = errors.New("invalid category filter")
	ErrCategoryLookup   = errors.New("category lookup failed")
	ErrCascadeDelete    = errors.New("failed to delete listing reviews")
	ErrGeocoding        = errors.New("geocoding failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field)
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidListing }

// Add appends a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// ErrOrNil returns e when it holds at least one field error.
func (e *ValidationError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
