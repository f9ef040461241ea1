package simulator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// draftWith builds a draft with one tracked item and one beneficiary per quantity
func draftWith(t *testing.T, stock int64, quantities ...string) entities.Draft {
	t.Helper()
	d, _ := entities.NewDraft().AddItem(entities.ItemSpec{
		ItemName:      "X",
		Unit:          "bag",
		InventoryID:   entities.SomeInventoryID(1),
		OriginalStock: dec(stock),
	})
	for i, raw := range quantities {
		var err error
		d, err = d.AddBeneficiary(entities.Beneficiary{ID: entities.BeneficiaryID(i + 1)})
		require.NoError(t, err)
		d, err = d.SetQuantity(i, 0, raw)
		require.NoError(t, err)
	}
	return d
}

func TestProject_SumsSetPositiveQuantities(t *testing.T) {
	d := draftWith(t, 100, "30", "20", "0", "")

	p := Project(d, entities.InventorySnapshot{})

	sp, ok := p.Get(1)
	require.True(t, ok)
	assert.True(t, sp.OriginalStock.Equal(dec(100)), "original %s", sp.OriginalStock)
	assert.True(t, sp.Allocated.Equal(dec(50)), "allocated %s", sp.Allocated)
	assert.True(t, sp.Remaining.Equal(dec(50)), "remaining %s", sp.Remaining)
}

func TestProject_OverAllocationIsNotClamped(t *testing.T) {
	d := draftWith(t, 100, "60", "60")

	p := Project(d, entities.InventorySnapshot{})

	sp, _ := p.Get(1)
	assert.True(t, sp.Remaining.Equal(dec(-20)), "remaining %s", sp.Remaining)
	assert.Equal(t, entities.OverAllocated, Classify(sp))
	require.Len(t, p.OverAllocated(), 1)
}

func TestProject_SnapshotWinsOverCapturedStock(t *testing.T) {
	d := draftWith(t, 100, "30")
	snapshot := entities.NewInventorySnapshot([]entities.InventoryItem{
		{ID: 1, ItemName: "X", OnHand: dec(40), Reserved: dec(15)},
	}, time.Now())

	p := Project(d, snapshot)

	sp, _ := p.Get(1)
	assert.True(t, sp.OriginalStock.Equal(dec(25)), "original %s", sp.OriginalStock)
	assert.True(t, sp.Remaining.Equal(dec(-5)), "remaining %s", sp.Remaining)
}

func TestProject_SharedInventoryAndUntrackedItems(t *testing.T) {
	d := entities.NewDraft()
	d, _ = d.AddItem(entities.ItemSpec{ItemName: "Urea", Unit: "bag", InventoryID: entities.SomeInventoryID(7), OriginalStock: dec(10)})
	d, _ = d.AddItem(entities.ItemSpec{ItemName: "Urea (2nd tranche)", Unit: "bag", InventoryID: entities.SomeInventoryID(7), OriginalStock: dec(10)})
	d, _ = d.AddItem(entities.ItemSpec{ItemName: "Training", Unit: "session", AssistanceType: entities.Service})
	d, _ = d.AddBeneficiary(entities.Beneficiary{ID: 1})
	d, _ = d.BulkSetQuantity([]int{0}, map[int]string{0: "3", 1: "4", 2: "99"})

	p := Project(d, entities.InventorySnapshot{})

	require.Len(t, p, 1, "untracked item must not be projected")
	sp, _ := p.Get(7)
	assert.True(t, sp.Allocated.Equal(dec(7)), "allocated %s", sp.Allocated)
	assert.True(t, sp.Remaining.Equal(dec(3)), "remaining %s", sp.Remaining)
}

func TestProject_FractionalQuantitiesAllocate(t *testing.T) {
	d := draftWith(t, 10, "0.5", "2.25")

	sp, _ := Project(d, entities.InventorySnapshot{}).Get(1)
	assert.Equal(t, "2.75", sp.Allocated.String())
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name      string
		original  int64
		remaining int64
		expected  entities.StockStatus
	}{
		{"over", 100, -1, entities.OverAllocated},
		{"exactly zero", 100, 0, entities.FullyAllocated},
		{"low", 100, 19, entities.LowStock},
		{"boundary is good", 100, 20, entities.GoodStock},
		{"plenty", 100, 80, entities.GoodStock},
		{"zero stock untouched", 0, 0, entities.FullyAllocated},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sp := entities.StockProjection{OriginalStock: dec(tc.original), Remaining: dec(tc.remaining)}
			assert.Equal(t, tc.expected, Classify(sp))
		})
	}
}
