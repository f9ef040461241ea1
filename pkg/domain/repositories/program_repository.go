package repositories

import (
	"context"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

// ProgramRepository creates subsidy programs on the authoritative side.
// Stock shortages are reported as *entities.ConflictError and field problems
// as *entities.FieldValidationError.
type ProgramRepository interface {
	CreateProgram(ctx context.Context, submission entities.ProgramSubmission) (*entities.CreatedProgram, error)
}
