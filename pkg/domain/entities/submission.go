package entities

import (
	"encoding/json"
	"strings"
)

// ProgramSubmission is the wire body for creating a subsidy program
type ProgramSubmission struct {
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Barangay      string                  `json:"barangay"`
	StartDate     string                  `json:"startDate"`
	EndDate       string                  `json:"endDate"`
	Beneficiaries []BeneficiarySubmission `json:"beneficiaries"`
}

// BeneficiarySubmission lists the line items for one beneficiary
type BeneficiarySubmission struct {
	BeneficiaryID BeneficiaryID    `json:"beneficiaryId"`
	Items         []ItemSubmission `json:"items"`
}

// ItemSubmission is one distributed quantity
type ItemSubmission struct {
	ItemName       string          `json:"itemName"`
	Quantity       json.Number     `json:"quantity"`
	Unit           string          `json:"unit"`
	AssistanceType AssistanceType  `json:"assistanceType"`
	InventoryID    NullInventoryID `json:"inventoryId"`
}

// ItemCount returns the number of line items across all beneficiaries
func (s ProgramSubmission) ItemCount() int {
	total := 0
	for _, b := range s.Beneficiaries {
		total += len(b.Items)
	}
	return total
}

// ProgramID is a server-assigned program id, numeric or opaque
type ProgramID string

// UnmarshalJSON accepts numeric and string ids
func (p *ProgramID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*p = ProgramID(n.String())
		return nil
	}
	*p = ProgramID(strings.Trim(string(data), `"`))
	return nil
}

// CreatedProgram is the server's record of an accepted program
type CreatedProgram struct {
	ID               ProgramID `json:"id"`
	Title            string    `json:"title"`
	Status           string    `json:"status,omitempty"`
	BeneficiaryCount int       `json:"beneficiaryCount,omitempty"`
	ItemCount        int       `json:"itemCount,omitempty"`
}
