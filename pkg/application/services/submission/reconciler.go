package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/application/services/allocation"
	"github.com/vsinha/subsidy/pkg/application/services/simulator"
	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/domain/repositories"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
	"github.com/vsinha/subsidy/pkg/infrastructure/logger"
)

// GenericFailureMessage is shown when the server gives no usable explanation
const GenericFailureMessage = "Failed to create subsidy program. Please try again."

// SnapshotFunc returns the current inventory snapshot
type SnapshotFunc func() entities.InventorySnapshot

// Reconciler submits the draft and keeps the server's conflict report until
// the user dismisses it or a later submission succeeds. The draft is only
// discarded after the server confirms creation.
type Reconciler struct {
	store    *allocation.Store
	programs repositories.ProgramRepository
	snapshot SnapshotFunc
	events   events.EventStore
	logger   *zap.Logger

	inFlight  atomic.Bool
	mu        sync.Mutex
	conflicts []entities.InventoryConflict
}

// NewReconciler creates a reconciler. snapshot and eventStore may be nil.
func NewReconciler(
	store *allocation.Store,
	programs repositories.ProgramRepository,
	snapshot SnapshotFunc,
	eventStore events.EventStore,
	log *zap.Logger,
) *Reconciler {
	if snapshot == nil {
		snapshot = func() entities.InventorySnapshot { return entities.InventorySnapshot{} }
	}
	return &Reconciler{
		store:    store,
		programs: programs,
		snapshot: snapshot,
		events:   eventStore,
		logger:   logger.OrNop(log),
	}
}

// Submitting reports whether a submission is awaiting the server
func (r *Reconciler) Submitting() bool {
	return r.inFlight.Load()
}

// Conflicts returns the conflicts reported by the last rejected submission
func (r *Reconciler) Conflicts() []entities.InventoryConflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.InventoryConflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// DismissConflicts clears the conflict report
func (r *Reconciler) DismissConflicts() {
	r.setConflicts(nil)
}

// Submit validates the current draft, serializes it and sends it to the
// server. Every failure is classified: the returned error wraps one of
// ErrLocalValidation, ErrNoAllocations, ErrInventoryConflict,
// ErrFieldValidation, ErrSubmissionFailed or ErrSubmissionInFlight, and the
// outcome describes it for display.
func (r *Reconciler) Submit(ctx context.Context) (dto.SubmissionOutcome, error) {
	if !r.inFlight.CompareAndSwap(false, true) {
		return dto.SubmissionOutcome{Kind: dto.OutcomeRejectedLocally, Message: ErrSubmissionInFlight.Error()}, ErrSubmissionInFlight
	}
	defer r.inFlight.Store(false)

	draft := r.store.Draft()
	projection := simulator.Project(draft, r.snapshot())

	if err := Validate(draft, projection); err != nil {
		var verr *ValidationError
		errors.As(err, &verr)
		outcome := dto.SubmissionOutcome{
			Kind:     dto.OutcomeRejectedLocally,
			Message:  err.Error(),
			Problems: verr.Problems,
		}
		r.record(events.SubmissionRejectedLocallyEvent, outcome)
		r.logger.Info("submission blocked by local validation", zap.Int("problems", len(verr.Problems)))
		return outcome, err
	}

	payload, err := BuildPayload(draft)
	if err != nil {
		outcome := dto.SubmissionOutcome{
			Kind:     dto.OutcomeRejectedLocally,
			Message:  err.Error(),
			Problems: []dto.Problem{{Field: "beneficiaries", Message: "No beneficiary has any allocated item"}},
		}
		r.record(events.SubmissionRejectedLocallyEvent, outcome)
		r.logger.Info("submission blocked: empty payload")
		return outcome, err
	}

	r.logger.Info("submitting subsidy program",
		zap.String("title", payload.Title),
		zap.Int("beneficiaries", len(payload.Beneficiaries)),
		zap.Int("line_items", payload.ItemCount()))

	created, err := r.programs.CreateProgram(ctx, payload)
	if err != nil {
		return r.classify(err)
	}

	outcome := dto.SubmissionOutcome{
		Kind:             dto.OutcomeCreated,
		Program:          created,
		BeneficiaryCount: len(payload.Beneficiaries),
		ItemCount:        payload.ItemCount(),
	}
	if created != nil {
		if created.BeneficiaryCount > 0 {
			outcome.BeneficiaryCount = created.BeneficiaryCount
		}
		if created.ItemCount > 0 {
			outcome.ItemCount = created.ItemCount
		}
		outcome.Message = fmt.Sprintf("Program %q created", created.Title)
	}

	r.setConflicts(nil)
	r.record(events.SubmissionCreatedEvent, outcome)
	r.logger.Info("subsidy program created",
		zap.Int("beneficiaries", outcome.BeneficiaryCount),
		zap.Int("items", outcome.ItemCount))
	r.store.Reset()
	return outcome, nil
}

func (r *Reconciler) classify(err error) (dto.SubmissionOutcome, error) {
	var conflict *entities.ConflictError
	var fields *entities.FieldValidationError
	var response *entities.ResponseError

	switch {
	case errors.As(err, &conflict) && len(conflict.Conflicts) > 0:
		r.setConflicts(conflict.Conflicts)
		outcome := dto.SubmissionOutcome{
			Kind:      dto.OutcomeConflict,
			Message:   conflict.Message,
			Conflicts: r.Conflicts(),
		}
		if outcome.Message == "" {
			outcome.Message = "Insufficient stock for some items"
		}
		r.record(events.SubmissionConflictEvent, outcome)
		r.logger.Warn("submission rejected: inventory conflict", zap.Int("conflicts", len(conflict.Conflicts)))
		return outcome, fmt.Errorf("%w: %v", ErrInventoryConflict, err)

	case errors.As(err, &fields) && len(fields.Errors) > 0:
		outcome := dto.SubmissionOutcome{Kind: dto.OutcomeFieldErrors, Message: fields.Summary()}
		r.record(events.SubmissionFieldErrorsEvent, outcome)
		r.logger.Warn("submission rejected: field validation", zap.String("summary", outcome.Message))
		return outcome, fmt.Errorf("%w: %v", ErrFieldValidation, err)

	default:
		outcome := dto.SubmissionOutcome{Kind: dto.OutcomeFailed, Message: GenericFailureMessage}
		if errors.As(err, &response) && response.Message != "" {
			outcome.Message = response.Message
		} else if fields != nil && fields.Message != "" {
			outcome.Message = fields.Message
		} else if conflict != nil && conflict.Message != "" {
			outcome.Message = conflict.Message
		}
		r.record(events.SubmissionFailedEvent, outcome)
		r.logger.Error("submission failed", zap.Error(err))
		return outcome, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
}

func (r *Reconciler) setConflicts(conflicts []entities.InventoryConflict) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts = append([]entities.InventoryConflict(nil), conflicts...)
}

func (r *Reconciler) record(eventType string, outcome dto.SubmissionOutcome) {
	if r.events == nil {
		return
	}
	settled := events.SubmissionSettled{
		Outcome:   outcome.Kind.String(),
		Message:   outcome.Message,
		Conflicts: outcome.Conflicts,
	}
	if outcome.Program != nil {
		settled.ProgramID = outcome.Program.ID
	}
	if err := r.events.AppendEvent(r.store.ID(), events.NewSubmissionSettledEvent(r.store.ID(), eventType, settled)); err != nil {
		r.logger.Warn("failed to record submission event", zap.Error(err))
	}
}
