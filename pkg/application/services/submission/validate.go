package submission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/application/services/simulator"
	"github.com/vsinha/subsidy/pkg/domain/entities"
)

var (
	// ErrLocalValidation marks a draft that failed the pre-submit checks
	ErrLocalValidation = errors.New("draft failed validation")
	// ErrOverAllocated marks a draft whose projection has negative remaining stock
	ErrOverAllocated = errors.New("inventory over-allocated")
	// ErrNoAllocations is returned when no beneficiary has a distributable quantity
	ErrNoAllocations = errors.New("no beneficiary has any allocated item")
	// ErrInventoryConflict marks a server-side stock rejection
	ErrInventoryConflict = errors.New("inventory conflict")
	// ErrFieldValidation marks a server-side field validation rejection
	ErrFieldValidation = errors.New("server rejected program fields")
	// ErrSubmissionFailed marks any other failed submission
	ErrSubmissionFailed = errors.New("submission failed")
	// ErrSubmissionInFlight is returned when submit is triggered while one is pending
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// ValidationError lists every pre-submit problem found in a draft
type ValidationError struct {
	Problems      []dto.Problem
	overAllocated bool
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("%s: %s", p.Field, p.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrLocalValidation || (target == ErrOverAllocated && e.overAllocated)
}

// Validate runs the pre-submit checks against the draft and its projection
func Validate(draft entities.Draft, projection simulator.Projection) error {
	verr := &ValidationError{}
	add := func(field, format string, args ...interface{}) {
		verr.Problems = append(verr.Problems, dto.Problem{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	meta := draft.Meta()
	if strings.TrimSpace(meta.Title) == "" {
		add("title", "Program title is required")
	}
	if meta.StartDate.IsZero() {
		add("startDate", "Start date is required")
	}
	if meta.EndDate.IsZero() {
		add("endDate", "End date is required")
	}
	if !meta.StartDate.IsZero() && !meta.EndDate.IsZero() && !meta.EndDate.After(meta.StartDate) {
		add("endDate", "End date must be after start date")
	}

	items := draft.Items()
	if len(items) == 0 {
		add("items", "Add at least one item")
	}
	for i, item := range items {
		if strings.TrimSpace(item.ItemName) == "" {
			add(fmt.Sprintf("items[%d].itemName", i), "Item name is required")
		}
		if strings.TrimSpace(item.Unit) == "" {
			add(fmt.Sprintf("items[%d].unit", i), "Unit is required")
		}
	}

	if draft.BeneficiaryCount() == 0 {
		add("beneficiaries", "Add at least one beneficiary")
	}

	for _, sp := range projection.OverAllocated() {
		verr.overAllocated = true
		add("inventory", "%s is over-allocated by %s %s (available %s, allocated %s)",
			sp.ItemName, sp.Remaining.Neg(), sp.Unit, sp.OriginalStock, sp.Allocated)
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}
