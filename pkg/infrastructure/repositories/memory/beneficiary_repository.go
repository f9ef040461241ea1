package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/domain/repositories"
)

// BeneficiaryRepository provides an in-memory beneficiary registry
type BeneficiaryRepository struct {
	mu            sync.RWMutex
	beneficiaries []entities.Beneficiary
	index         map[entities.BeneficiaryID]int
}

// NewBeneficiaryRepository creates a new in-memory beneficiary registry
func NewBeneficiaryRepository(expected int) *BeneficiaryRepository {
	return &BeneficiaryRepository{
		beneficiaries: make([]entities.Beneficiary, 0, expected),
		index:         make(map[entities.BeneficiaryID]int, expected),
	}
}

// Verify interface compliance
var _ repositories.BeneficiaryRepository = (*BeneficiaryRepository)(nil)

// LoadBeneficiaries loads registry records
func (r *BeneficiaryRepository) LoadBeneficiaries(beneficiaries []*entities.Beneficiary) error {
	for _, b := range beneficiaries {
		r.AddBeneficiary(*b)
	}
	return nil
}

// AddBeneficiary adds or replaces a registry record
func (r *BeneficiaryRepository) AddBeneficiary(b entities.Beneficiary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, exists := r.index[b.ID]; exists {
		r.beneficiaries[i] = b
		return
	}
	r.index[b.ID] = len(r.beneficiaries)
	r.beneficiaries = append(r.beneficiaries, b)
}

// SearchBeneficiaries matches the query against name, RSBSA number and
// address, case-insensitively
func (r *BeneficiaryRepository) SearchBeneficiaries(ctx context.Context, query string) ([]entities.Beneficiary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	results := make([]entities.Beneficiary, 0, len(r.beneficiaries))
	for _, b := range r.beneficiaries {
		if query == "" ||
			strings.Contains(strings.ToLower(b.Name), query) ||
			strings.Contains(strings.ToLower(b.RSBSANumber), query) ||
			strings.Contains(strings.ToLower(b.Address), query) {
			results = append(results, b)
		}
	}
	return results, nil
}
