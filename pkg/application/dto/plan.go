package dto

import (
	"github.com/vsinha/subsidy/pkg/domain/entities"
)

// PlanReport summarizes a draft and its stock projection without submitting it
type PlanReport struct {
	Title            string      `json:"title"`
	Barangay         string      `json:"barangay,omitempty"`
	StartDate        string      `json:"startDate,omitempty"`
	EndDate          string      `json:"endDate,omitempty"`
	ItemCount        int         `json:"itemCount"`
	BeneficiaryCount int         `json:"beneficiaryCount"`
	Stock            []StockLine `json:"stock"`
	Problems         []Problem   `json:"problems,omitempty"`
}

// StockLine is one projected inventory record with its display status
type StockLine struct {
	entities.StockProjection
	Status string `json:"status"`
}

// Ready reports whether the draft passed local validation
func (r PlanReport) Ready() bool {
	return len(r.Problems) == 0
}
