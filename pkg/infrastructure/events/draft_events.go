package events

import (
	"github.com/vsinha/subsidy/pkg/domain/entities"
)

const (
	DraftMetaUpdatedEvent          = "draft.meta.updated"
	DraftItemAddedEvent            = "draft.item.added"
	DraftItemRemovedEvent          = "draft.item.removed"
	DraftItemUpdatedEvent          = "draft.item.updated"
	DraftItemBoundEvent            = "draft.item.bound"
	DraftBeneficiaryAddedEvent     = "draft.beneficiary.added"
	DraftBeneficiariesAddedEvent   = "draft.beneficiaries.added"
	DraftBeneficiaryRemovedEvent   = "draft.beneficiary.removed"
	DraftQuantitySetEvent          = "draft.quantity.set"
	DraftQuantityBulkSetEvent      = "draft.quantity.bulk_set"
	DraftQuantitiesClearedEvent    = "draft.quantity.cleared"
	DraftDiscardedEvent            = "draft.discarded"
	DraftCommandRejectedEvent      = "draft.command.rejected"
	InventoryRefreshedEvent        = "inventory.refreshed"
	ProjectionRecomputedEvent      = "projection.recomputed"
	SubmissionRejectedLocallyEvent = "submission.rejected_locally"
	SubmissionCreatedEvent         = "submission.created"
	SubmissionConflictEvent        = "submission.conflict"
	SubmissionFieldErrorsEvent     = "submission.field_errors"
	SubmissionFailedEvent          = "submission.failed"
)

// DraftChanged records a successful draft command
type DraftChanged struct {
	Command          string `json:"command"`
	Detail           string `json:"detail,omitempty"`
	ItemCount        int    `json:"item_count"`
	BeneficiaryCount int    `json:"beneficiary_count"`
}

// DraftCommandRejected records a command that left the draft unchanged
type DraftCommandRejected struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// InventoryRefreshed records a wholesale snapshot replacement
type InventoryRefreshed struct {
	ItemCount int `json:"item_count"`
}

// ProjectionRecomputed records one simulator pass
type ProjectionRecomputed struct {
	TrackedItems  int `json:"tracked_items"`
	OverAllocated int `json:"over_allocated"`
}

// SubmissionSettled records the outcome of a submit attempt
type SubmissionSettled struct {
	Outcome   string                       `json:"outcome"`
	Message   string                       `json:"message,omitempty"`
	ProgramID entities.ProgramID           `json:"program_id,omitempty"`
	Conflicts []entities.InventoryConflict `json:"conflicts,omitempty"`
}

func NewDraftChangedEvent(streamID, eventType string, change DraftChanged) Event {
	return NewEvent(eventType, streamID, change)
}

func NewDraftCommandRejectedEvent(streamID, command string, err error) Event {
	return NewEvent(DraftCommandRejectedEvent, streamID, DraftCommandRejected{Command: command, Reason: err.Error()})
}

func NewInventoryRefreshedEvent(streamID string, snapshot entities.InventorySnapshot) Event {
	return NewEvent(InventoryRefreshedEvent, streamID, InventoryRefreshed{ItemCount: snapshot.Len()})
}

func NewProjectionRecomputedEvent(streamID string, tracked, overAllocated int) Event {
	return NewEvent(ProjectionRecomputedEvent, streamID, ProjectionRecomputed{
		TrackedItems:  tracked,
		OverAllocated: overAllocated,
	})
}

func NewSubmissionSettledEvent(streamID, eventType string, settled SubmissionSettled) Event {
	return NewEvent(eventType, streamID, settled)
}
