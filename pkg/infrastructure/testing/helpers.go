package testing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/infrastructure/repositories/memory"
)

// Backends bundles the in-memory repositories a test scenario runs against
type Backends struct {
	Inventory     *memory.InventoryRepository
	Beneficiaries *memory.BeneficiaryRepository
	Programs      *memory.ProgramRepository
}

// BuildBarangayTestData builds the two-barangay scenario: Fertilizer and
// Rice Seed in stock, three registered farmers in Poblacion and one in San Roque
func BuildBarangayTestData() (*Backends, error) {
	inventory := memory.NewInventoryRepository()
	items := []*entities.InventoryItem{
		{
			ID:       1,
			ItemName: "Fertilizer",
			Unit:     "bag",
			OnHand:   decimal.NewFromInt(50),
			Reserved: decimal.Zero,
		},
		{
			ID:       2,
			ItemName: "Rice Seed",
			Unit:     "kg",
			OnHand:   decimal.NewFromInt(200),
			Reserved: decimal.NewFromInt(40),
		},
	}
	if err := inventory.LoadInventoryItems(items); err != nil {
		return nil, err
	}

	registry := []*entities.Beneficiary{
		{ID: 1, Name: "Juan Dela Cruz", RSBSANumber: "03-01-001", Barangay: "Poblacion", Commodity: "Rice"},
		{ID: 2, Name: "Maria Santos", RSBSANumber: "03-01-002", Barangay: "Poblacion", Commodity: "Rice"},
		{ID: 3, Name: "Pedro Reyes", RSBSANumber: "03-01-003", Barangay: "San Roque", Commodity: "Corn"},
		{ID: 4, Name: "Ana Lim", RSBSANumber: "03-01-004", Barangay: "Poblacion", Commodity: "Rice"},
	}
	beneficiaries := memory.NewBeneficiaryRepository(len(registry))
	if err := beneficiaries.LoadBeneficiaries(registry); err != nil {
		return nil, err
	}

	return &Backends{
		Inventory:     inventory,
		Beneficiaries: beneficiaries,
		Programs:      memory.NewProgramRepository(inventory),
	}, nil
}

// BuildShortageTestData builds a single Fertilizer record with the given
// on-hand and reserved bags and an empty registry
func BuildShortageTestData(onHand, reserved int64) (*Backends, error) {
	inventory := memory.NewInventoryRepository()
	if err := inventory.LoadInventoryItems([]*entities.InventoryItem{{
		ID:       1,
		ItemName: "Fertilizer",
		Unit:     "bag",
		OnHand:   decimal.NewFromInt(onHand),
		Reserved: decimal.NewFromInt(reserved),
	}}); err != nil {
		return nil, err
	}
	return &Backends{
		Inventory:     inventory,
		Beneficiaries: memory.NewBeneficiaryRepository(0),
		Programs:      memory.NewProgramRepository(inventory),
	}, nil
}
