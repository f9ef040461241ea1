package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrIndexOutOfRange is returned when an item or beneficiary index is invalid
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDuplicateBeneficiary is returned when a beneficiary is already in the draft
	ErrDuplicateBeneficiary = errors.New("beneficiary already added")
	// ErrInvalidField is returned when an item field update cannot be applied
	ErrInvalidField = errors.New("invalid item field")
)

// ConflictError is the server's authoritative stock rejection
type ConflictError struct {
	Message   string
	Conflicts []InventoryConflict
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("inventory conflict: %s (%d items)", e.Message, len(e.Conflicts))
	}
	return fmt.Sprintf("inventory conflict: %d items short", len(e.Conflicts))
}

// FieldValidationError carries server-side field validation messages
type FieldValidationError struct {
	Message string
	Errors  map[string][]string
}

func (e *FieldValidationError) Error() string {
	return "validation failed: " + e.Summary()
}

// Summary joins messages as "field: msg1, msg2 | field2: msg3", fields sorted by name
func (e *FieldValidationError) Summary() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Errors[field], ", ")))
	}
	return strings.Join(parts, " | ")
}

// ResponseError is an unexpected API response
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected response %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("unexpected response %d", e.StatusCode)
}
