package dto

import (
	"github.com/vsinha/subsidy/pkg/domain/entities"
)

// OutcomeKind classifies how a submit attempt ended
type OutcomeKind int

const (
	OutcomeRejectedLocally OutcomeKind = iota
	OutcomeCreated
	OutcomeConflict
	OutcomeFieldErrors
	OutcomeFailed
)

// String method for OutcomeKind enum
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRejectedLocally:
		return "rejected_locally"
	case OutcomeCreated:
		return "created"
	case OutcomeConflict:
		return "conflict"
	case OutcomeFieldErrors:
		return "field_errors"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind appear by name in JSON output
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SubmissionOutcome is the user-facing result of one submit attempt
type SubmissionOutcome struct {
	Kind             OutcomeKind                  `json:"kind"`
	Message          string                       `json:"message,omitempty"`
	Problems         []Problem                    `json:"problems,omitempty"`
	Program          *entities.CreatedProgram     `json:"program,omitempty"`
	BeneficiaryCount int                          `json:"beneficiaryCount,omitempty"`
	ItemCount        int                          `json:"itemCount,omitempty"`
	Conflicts        []entities.InventoryConflict `json:"conflicts,omitempty"`
}

// Problem is one local validation failure, keyed by the offending field
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
