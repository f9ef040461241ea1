package repositories

import (
	"context"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

// BeneficiaryRepository searches the beneficiary registry.
// An empty query returns the full registry.
type BeneficiaryRepository interface {
	SearchBeneficiaries(ctx context.Context, query string) ([]entities.Beneficiary, error)
}
