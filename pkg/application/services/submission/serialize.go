package submission

import (
	"encoding/json"
	"time"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// BuildPayload serializes the draft for submission. Only entries with a
// quantity of at least one are sent, and beneficiaries left without any
// such entry are omitted. An empty result is an error.
func BuildPayload(draft entities.Draft) (entities.ProgramSubmission, error) {
	meta := draft.Meta()
	payload := entities.ProgramSubmission{
		Title:         meta.Title,
		Description:   meta.Description,
		Barangay:      meta.Barangay,
		StartDate:     formatDate(meta.StartDate),
		EndDate:       formatDate(meta.EndDate),
		Beneficiaries: []entities.BeneficiarySubmission{},
	}

	for _, alloc := range draft.Allocations() {
		var lines []entities.ItemSubmission
		for _, entry := range alloc.Entries {
			if !entry.Quantity.Distributable() {
				continue
			}
			lines = append(lines, entities.ItemSubmission{
				ItemName:       entry.ItemName,
				Quantity:       json.Number(entry.Quantity.Value().String()),
				Unit:           entry.Unit,
				AssistanceType: entry.AssistanceType,
				InventoryID:    entry.InventoryID,
			})
		}
		if len(lines) == 0 {
			continue
		}
		payload.Beneficiaries = append(payload.Beneficiaries, entities.BeneficiarySubmission{
			BeneficiaryID: alloc.Beneficiary.ID,
			Items:         lines,
		})
	}

	if len(payload.Beneficiaries) == 0 {
		return payload, ErrNoAllocations
	}
	return payload, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
