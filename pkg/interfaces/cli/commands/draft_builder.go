package commands

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/application/services/session"
	"github.com/vsinha/subsidy/pkg/application/services/simulator"
	"github.com/vsinha/subsidy/pkg/application/services/submission"
	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/infrastructure/repositories/yaml"
)

// buildDraft replays a program file into the session's store, one command
// per edit, the way an operator would fill in the creation form
func buildDraft(s *session.Session, f *yaml.ProgramFile, log *zap.Logger) error {
	store := s.Store()

	meta, err := f.Meta()
	if err != nil {
		return err
	}
	if err := store.SetMeta(meta); err != nil {
		return err
	}

	itemIndex := make(map[string]int, len(f.Items))
	for i, line := range f.Items {
		spec, err := line.Spec()
		if err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if _, err := store.AddItem(spec); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if spec.InventoryID.Valid {
			if err := bindItem(s, i, line, spec.InventoryID.ID, log); err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
		}
		if line.ItemName != "" {
			itemIndex[line.ItemName] = i
		}
	}

	registry := make(map[entities.BeneficiaryID]entities.Beneficiary)
	for _, b := range s.AvailablePool("") {
		registry[b.ID] = b
	}

	for i, line := range f.Beneficiaries {
		id := entities.BeneficiaryID(line.ID)
		b, ok := registry[id]
		if !ok {
			return fmt.Errorf("beneficiaries[%d]: beneficiary %d not found in registry", i, line.ID)
		}
		if err := store.AddBeneficiary(b); err != nil {
			return fmt.Errorf("beneficiaries[%d]: %w", i, err)
		}
		row := store.Draft().BeneficiaryCount() - 1
		for name, raw := range line.Quantities {
			if err := store.SetQuantity(row, itemIndex[name], raw); err != nil {
				return fmt.Errorf("beneficiaries[%d]: %w", i, err)
			}
		}
	}

	if f.AddAll != nil {
		added, err := s.AddAllAvailable(f.AddAll.Barangay)
		if err != nil {
			return fmt.Errorf("add_all: %w", err)
		}
		log.Debug("added beneficiaries from registry",
			zap.String("barangay", f.AddAll.Barangay),
			zap.Int("added", added))
	}

	for i, bulk := range f.Bulk {
		rows, err := beneficiaryRows(store.Draft(), bulk.BeneficiaryIDs)
		if err != nil {
			return fmt.Errorf("bulk[%d]: %w", i, err)
		}
		values := make(map[int]string, len(bulk.Quantities))
		for name, raw := range bulk.Quantities {
			values[itemIndex[name]] = raw
		}
		if err := store.BulkSetQuantity(rows, values); err != nil {
			return fmt.Errorf("bulk[%d]: %w", i, err)
		}
	}

	return nil
}

// bindItem binds an item to its stock record and restores names the file
// overrides. Without a record the item keeps the stock written in the file.
func bindItem(s *session.Session, index int, line yaml.ItemLine, id entities.InventoryID, log *zap.Logger) error {
	store := s.Store()
	inv, ok := s.Snapshot().Get(id)
	if !ok {
		log.Warn("inventory record not found, using declared stock",
			zap.Int64("inventory_id", int64(id)),
			zap.String("item", line.ItemName))
		return nil
	}
	if err := store.BindInventory(index, inv); err != nil {
		return err
	}
	if line.ItemName != "" && line.ItemName != inv.ItemName {
		if err := store.UpdateItemField(index, entities.FieldItemName, line.ItemName); err != nil {
			return err
		}
	}
	if line.Unit != "" && line.Unit != inv.Unit {
		if err := store.UpdateItemField(index, entities.FieldUnit, line.Unit); err != nil {
			return err
		}
	}
	return nil
}

// beneficiaryRows maps registry ids to draft rows. No ids means every row.
func beneficiaryRows(draft entities.Draft, ids []int64) ([]int, error) {
	beneficiaries := draft.Beneficiaries()
	if len(ids) == 0 {
		rows := make([]int, len(beneficiaries))
		for i := range rows {
			rows[i] = i
		}
		return rows, nil
	}

	position := make(map[entities.BeneficiaryID]int, len(beneficiaries))
	for i, b := range beneficiaries {
		position[b.ID] = i
	}
	rows := make([]int, 0, len(ids))
	for _, id := range ids {
		row, ok := position[entities.BeneficiaryID(id)]
		if !ok {
			return nil, fmt.Errorf("beneficiary %d is not in the draft", id)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// planReport summarizes the draft, its projection and any local problems
func planReport(draft entities.Draft, projection simulator.Projection) dto.PlanReport {
	meta := draft.Meta()
	report := dto.PlanReport{
		Title:            meta.Title,
		Barangay:         meta.Barangay,
		ItemCount:        draft.ItemCount(),
		BeneficiaryCount: draft.BeneficiaryCount(),
		Stock:            []dto.StockLine{},
	}
	if !meta.StartDate.IsZero() {
		report.StartDate = meta.StartDate.Format("2006-01-02")
	}
	if !meta.EndDate.IsZero() {
		report.EndDate = meta.EndDate.Format("2006-01-02")
	}

	for _, sp := range projection.Sorted() {
		report.Stock = append(report.Stock, dto.StockLine{
			StockProjection: sp,
			Status:          simulator.Classify(sp).String(),
		})
	}

	if err := submission.Validate(draft, projection); err != nil {
		var verr *submission.ValidationError
		if errors.As(err, &verr) {
			report.Problems = verr.Problems
		} else {
			report.Problems = []dto.Problem{{Field: "draft", Message: err.Error()}}
		}
	}
	if _, err := submission.BuildPayload(draft); err != nil && report.Ready() {
		report.Problems = append(report.Problems, dto.Problem{Field: "beneficiaries", Message: "No beneficiary has any allocated item"})
	}
	return report
}
