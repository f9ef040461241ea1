package yaml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

const sampleProgram = `
title: Wet season support
barangay: Poblacion
start_date: 2026-06-01
end_date: 2026-06-30
items:
  - item_name: Fertilizer
    unit: bag
    inventory_id: 1
  - item_name: Fuel subsidy
    unit: liter
    assistance_type: gasoline
    cost: 65.5
beneficiaries:
  - id: 101
    quantities:
      Fertilizer: 2
      Fuel subsidy: "10"
  - id: 102
add_all:
  barangay: Poblacion
bulk:
  - quantities:
      Fertilizer: 1
`

func TestReadProgram(t *testing.T) {
	f, err := ReadProgram(strings.NewReader(sampleProgram))
	require.NoError(t, err)

	meta, err := f.Meta()
	require.NoError(t, err)
	assert.Equal(t, "Wet season support", meta.Title)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), meta.StartDate)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), meta.EndDate)

	require.Len(t, f.Items, 2)
	fertilizer, err := f.Items[0].Spec()
	require.NoError(t, err)
	assert.Equal(t, entities.SomeInventoryID(1), fertilizer.InventoryID)
	assert.Equal(t, entities.Aid, fertilizer.AssistanceType)

	fuel, err := f.Items[1].Spec()
	require.NoError(t, err)
	assert.False(t, fuel.InventoryID.Valid)
	assert.Equal(t, entities.Gasoline, fuel.AssistanceType)
	assert.True(t, fuel.Cost.Equal(decimal.RequireFromString("65.5")))

	require.Len(t, f.Beneficiaries, 2)
	assert.Equal(t, "2", f.Beneficiaries[0].Quantities["Fertilizer"])
	assert.Equal(t, "10", f.Beneficiaries[0].Quantities["Fuel subsidy"])
	assert.Empty(t, f.Beneficiaries[1].Quantities)

	require.NotNil(t, f.AddAll)
	assert.Equal(t, "Poblacion", f.AddAll.Barangay)
	require.Len(t, f.Bulk, 1)
	assert.Empty(t, f.Bulk[0].BeneficiaryIDs)
}

func TestReadProgram_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "unknown field",
			content: "title: x\nbudget: 10\n",
			errPart: "field budget not found",
		},
		{
			name:    "unknown item in quantities",
			content: "title: x\nitems:\n  - item_name: Seed\n    unit: kg\nbeneficiaries:\n  - id: 1\n    quantities:\n      Fertilizer: 1\n",
			errPart: `beneficiaries[0]: unknown item "Fertilizer"`,
		},
		{
			name:    "duplicate item name",
			content: "title: x\nitems:\n  - item_name: Fertilizer\n    unit: bag\n    inventory_id: 1\n  - item_name: Fertilizer\n    unit: bag\nbeneficiaries:\n  - id: 1\n    quantities:\n      Fertilizer: 40\n",
			errPart: `items[1]: duplicate item name "Fertilizer"`,
		},
		{
			name:    "bad assistance type",
			content: "title: x\nitems:\n  - item_name: Seed\n    unit: kg\n    assistance_type: loan\n",
			errPart: "items[0]",
		},
		{
			name:    "bad stock",
			content: "title: x\nitems:\n  - item_name: Seed\n    unit: kg\n    original_stock: lots\n",
			errPart: "original_stock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProgram(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestProgramFile_MetaLeavesBlankDatesZero(t *testing.T) {
	f, err := ReadProgram(strings.NewReader("title: x\nitems: []\n"))
	require.NoError(t, err)
	meta, err := f.Meta()
	require.NoError(t, err)
	assert.True(t, meta.StartDate.IsZero())
	assert.True(t, meta.EndDate.IsZero())

	f.StartDate = "June 1"
	_, err = f.Meta()
	assert.ErrorContains(t, err, "start_date")
}

func TestLoadProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleProgram), 0o644))

	f, err := LoadProgram(path)
	require.NoError(t, err)
	assert.Equal(t, "Poblacion", f.Barangay)

	_, err = LoadProgram(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
