package memory

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/domain/repositories"
)

// ProgramRepository plays the server's part for program creation: it checks
// required fields, performs the authoritative stock check against an
// InventoryRepository and reserves stock for accepted programs.
type ProgramRepository struct {
	inventory *InventoryRepository

	mu          sync.Mutex
	programs    []entities.CreatedProgram
	submissions []entities.ProgramSubmission
	calls       int
	failNext    error
}

// NewProgramRepository creates a program repository backed by inventory
func NewProgramRepository(inventory *InventoryRepository) *ProgramRepository {
	return &ProgramRepository{inventory: inventory}
}

// Verify interface compliance
var _ repositories.ProgramRepository = (*ProgramRepository)(nil)

// FailNext makes the next CreateProgram call return err
func (r *ProgramRepository) FailNext(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

// Calls returns how many times CreateProgram was invoked
func (r *ProgramRepository) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Submissions returns every submission received, accepted or not
func (r *ProgramRepository) Submissions() []entities.ProgramSubmission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.ProgramSubmission, len(r.submissions))
	copy(out, r.submissions)
	return out
}

// Programs returns the accepted programs
func (r *ProgramRepository) Programs() []entities.CreatedProgram {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.CreatedProgram, len(r.programs))
	copy(out, r.programs)
	return out
}

// CreateProgram validates and stores a program
func (r *ProgramRepository) CreateProgram(ctx context.Context, submission entities.ProgramSubmission) (*entities.CreatedProgram, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	r.submissions = append(r.submissions, submission)
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if fieldErrors := validateSubmission(submission); len(fieldErrors) > 0 {
		return nil, &entities.FieldValidationError{Message: "The given data was invalid.", Errors: fieldErrors}
	}

	required := make(map[entities.InventoryID]decimal.Decimal)
	for _, b := range submission.Beneficiaries {
		for _, line := range b.Items {
			if !line.InventoryID.Valid {
				continue
			}
			qty, err := decimal.NewFromString(line.Quantity.String())
			if err != nil {
				return nil, &entities.FieldValidationError{
					Message: "The given data was invalid.",
					Errors:  map[string][]string{"quantity": {"The quantity must be a number."}},
				}
			}
			required[line.InventoryID.ID] = required[line.InventoryID.ID].Add(qty)
		}
	}

	conflicts, err := r.inventory.ReserveStock(required)
	if err != nil {
		return nil, &entities.ResponseError{StatusCode: 500, Message: err.Error()}
	}
	if len(conflicts) > 0 {
		return nil, &entities.ConflictError{Message: "Insufficient stock for some items", Conflicts: conflicts}
	}

	program := entities.CreatedProgram{
		ID:               entities.ProgramID(strconv.Itoa(len(r.programs) + 1)),
		Title:            submission.Title,
		Status:           "pending",
		BeneficiaryCount: len(submission.Beneficiaries),
		ItemCount:        submission.ItemCount(),
	}
	r.programs = append(r.programs, program)
	return &program, nil
}

func validateSubmission(s entities.ProgramSubmission) map[string][]string {
	errs := make(map[string][]string)
	if strings.TrimSpace(s.Title) == "" {
		errs["title"] = append(errs["title"], "The title field is required.")
	}
	start, startErr := time.Parse("2006-01-02", s.StartDate)
	if startErr != nil {
		errs["startDate"] = append(errs["startDate"], "The start date is not a valid date.")
	}
	end, endErr := time.Parse("2006-01-02", s.EndDate)
	if endErr != nil {
		errs["endDate"] = append(errs["endDate"], "The end date is not a valid date.")
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		errs["endDate"] = append(errs["endDate"], "The end date must be a date after start date.")
	}
	if len(s.Beneficiaries) == 0 {
		errs["beneficiaries"] = append(errs["beneficiaries"], "The beneficiaries field is required.")
	}
	return errs
}
