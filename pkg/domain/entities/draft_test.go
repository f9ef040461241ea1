package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func fertilizerSpec() ItemSpec {
	return ItemSpec{
		ItemName:       "Fertilizer",
		Unit:           "bag",
		AssistanceType: Aid,
		InventoryID:    SomeInventoryID(1),
		OriginalStock:  decimal.NewFromInt(50),
	}
}

func farmer(id int64, name string) Beneficiary {
	return Beneficiary{ID: BeneficiaryID(id), Name: name, Barangay: "San Isidro"}
}

func assertAligned(t *testing.T, d Draft) {
	t.Helper()
	for _, alloc := range d.Allocations() {
		if len(alloc.Entries) != d.ItemCount() {
			t.Fatalf("Beneficiary %d has %d entries, draft has %d items",
				alloc.Beneficiary.ID, len(alloc.Entries), d.ItemCount())
		}
		for i, entry := range alloc.Entries {
			item, _ := d.Item(i)
			if entry.ItemID != item.ID {
				t.Fatalf("Entry %d of beneficiary %d points at %s, expected %s",
					i, alloc.Beneficiary.ID, entry.ItemID, item.ID)
			}
		}
	}
}

func TestDraft_AlignmentAcrossStructuralEdits(t *testing.T) {
	d := NewDraft()
	d, _ = d.AddItem(fertilizerSpec())
	d, _ = d.AddBeneficiary(farmer(1, "Juan"))
	d, _ = d.AddBeneficiary(farmer(2, "Maria"))
	assertAligned(t, d)

	d, seed := d.AddItem(ItemSpec{ItemName: "Rice Seed", Unit: "kg"})
	assertAligned(t, d)

	d, _ = d.SetQuantity(0, 1, "15")
	d, _ = d.SetQuantity(1, 0, "3")

	var err error
	d, err = d.RemoveItem(0)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	assertAligned(t, d)

	alloc, _ := d.Allocation(0)
	if alloc.Entries[0].ItemID != seed.ID {
		t.Fatalf("Expected remaining entry to be the seed item")
	}
	if !alloc.Entries[0].Quantity.Equal(QuantityFromInt(15)) {
		t.Errorf("Expected seed quantity 15 to survive removal, got %s", alloc.Entries[0].Quantity)
	}
	other, _ := d.Allocation(1)
	if other.Entries[0].Quantity.IsSet() {
		t.Errorf("Expected Maria's seed entry to be unset, got %s", other.Entries[0].Quantity)
	}

	d, _ = d.AddBeneficiary(farmer(3, "Pedro"))
	d, _ = d.AddItem(fertilizerSpec())
	assertAligned(t, d)
}

func TestDraft_IsImmutable(t *testing.T) {
	base, _ := NewDraft().AddItem(fertilizerSpec())
	base, _ = base.AddBeneficiary(farmer(1, "Juan"))

	edited, err := base.SetQuantity(0, 0, "10")
	if err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	q, _ := base.Quantity(0, 0)
	if q.IsSet() {
		t.Errorf("Expected original draft untouched, got %s", q)
	}
	q, _ = edited.Quantity(0, 0)
	if !q.Equal(QuantityFromInt(10)) {
		t.Errorf("Expected 10 on edited draft, got %s", q)
	}
}

func TestDraft_DuplicateBeneficiaryRejected(t *testing.T) {
	d, _ := NewDraft().AddBeneficiary(farmer(7, "Juan"))

	// same registry id arriving as a string
	id, err := NormalizeBeneficiaryID("7")
	if err != nil {
		t.Fatalf("normalize failed: %v", err)
	}
	next, err := d.AddBeneficiary(Beneficiary{ID: id, Name: "Juan again"})
	if !errors.Is(err, ErrDuplicateBeneficiary) {
		t.Fatalf("Expected ErrDuplicateBeneficiary, got %v", err)
	}
	if next.BeneficiaryCount() != 1 {
		t.Errorf("Expected draft unchanged with 1 beneficiary, got %d", next.BeneficiaryCount())
	}
}

func TestDraft_DistinctBeneficiariesAfterMixedAdds(t *testing.T) {
	d := NewDraft()
	ids := []int64{1, 2, 1, 3, 2, 2, 4}
	for _, id := range ids {
		d, _ = d.AddBeneficiary(farmer(id, "x"))
	}
	d, _ = d.AddManyBeneficiaries([]Beneficiary{farmer(4, "x"), farmer(5, "x"), farmer(1, "x")}, 10)

	seen := make(map[BeneficiaryID]bool)
	for _, b := range d.Beneficiaries() {
		seen[b.ID] = true
	}
	if len(seen) != d.BeneficiaryCount() {
		t.Errorf("Expected %d distinct ids, got %d", d.BeneficiaryCount(), len(seen))
	}
	if d.BeneficiaryCount() != 5 {
		t.Errorf("Expected 5 beneficiaries, got %d", d.BeneficiaryCount())
	}
}

func TestDraft_AddManyBeneficiariesRespectsLimit(t *testing.T) {
	pool := []Beneficiary{farmer(1, "a"), farmer(2, "b"), farmer(3, "c"), farmer(4, "d")}

	d, added := NewDraft().AddManyBeneficiaries(pool, 2)
	if added != 2 || d.BeneficiaryCount() != 2 {
		t.Fatalf("Expected 2 added, got %d (count %d)", added, d.BeneficiaryCount())
	}

	d, added = d.AddManyBeneficiaries(pool, 0)
	if added != 0 {
		t.Errorf("Expected zero limit to add nothing, got %d", added)
	}

	d, added = d.AddManyBeneficiaries(pool, 10)
	if added != 2 || d.BeneficiaryCount() != 4 {
		t.Errorf("Expected remaining 2 added, got %d (count %d)", added, d.BeneficiaryCount())
	}
}

func TestAvailablePool(t *testing.T) {
	d, _ := NewDraft().AddBeneficiary(farmer(1, "Juan"))
	candidates := []Beneficiary{
		farmer(1, "Juan"),
		farmer(2, "Maria"),
		{ID: 3, Name: "Pedro", Barangay: "Poblacion"},
		{ID: 4, Name: "Ana", Address: "Purok 2, San Isidro"},
	}

	pool := AvailablePool(d, candidates, "")
	if len(pool) != 3 {
		t.Errorf("Expected 3 candidates without filter, got %d", len(pool))
	}

	pool = AvailablePool(d, candidates, "san isidro")
	if len(pool) != 2 {
		t.Fatalf("Expected 2 candidates in San Isidro, got %d", len(pool))
	}
	if pool[0].ID != 2 || pool[1].ID != 4 {
		t.Errorf("Unexpected pool order: %v", pool)
	}
}

func TestDraft_IndexOutOfRange(t *testing.T) {
	d, _ := NewDraft().AddItem(fertilizerSpec())
	d, _ = d.AddBeneficiary(farmer(1, "Juan"))

	testCases := []struct {
		name string
		op   func() error
	}{
		{"remove item", func() error { _, err := d.RemoveItem(3); return err }},
		{"remove negative item", func() error { _, err := d.RemoveItem(-1); return err }},
		{"remove beneficiary", func() error { _, err := d.RemoveBeneficiary(1); return err }},
		{"set quantity beneficiary", func() error { _, err := d.SetQuantity(2, 0, "1"); return err }},
		{"set quantity item", func() error { _, err := d.SetQuantity(0, 2, "1"); return err }},
		{"update item", func() error { _, err := d.UpdateItemField(5, FieldUnit, "kg"); return err }},
		{"bulk beneficiary", func() error { _, err := d.BulkSetQuantity([]int{0, 9}, map[int]string{0: "1"}); return err }},
		{"bulk item", func() error { _, err := d.BulkSetQuantity([]int{0}, map[int]string{4: "1"}); return err }},
		{"clear", func() error { _, err := d.ClearQuantities([]int{3}); return err }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.op(); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}
}

func TestDraft_BulkSetQuantityMerges(t *testing.T) {
	d, _ := NewDraft().AddItem(fertilizerSpec())
	d, _ = d.AddItem(ItemSpec{ItemName: "Seed", Unit: "kg"})
	d, _ = d.AddItem(ItemSpec{ItemName: "Cash", Unit: "php", AssistanceType: Cash})
	d, _ = d.AddBeneficiary(farmer(1, "Juan"))
	d, _ = d.AddBeneficiary(farmer(2, "Maria"))
	d, _ = d.SetQuantity(0, 1, "9")
	d, _ = d.SetQuantity(1, 1, "8")

	d, err := d.BulkSetQuantity([]int{0, 1}, map[int]string{0: "4", 1: ""})
	if err != nil {
		t.Fatalf("BulkSetQuantity failed: %v", err)
	}

	expect := [][]string{{"4", "9", ""}, {"4", "8", ""}}
	for b := range expect {
		for i, want := range expect[b] {
			q, _ := d.Quantity(b, i)
			if q.String() != want {
				t.Errorf("Beneficiary %d item %d: expected %q, got %q", b, i, want, q.String())
			}
		}
	}

	d, _ = d.ClearQuantities([]int{1})
	for i := 0; i < d.ItemCount(); i++ {
		q, _ := d.Quantity(1, i)
		if q.IsSet() {
			t.Errorf("Expected item %d cleared for Maria, got %s", i, q)
		}
	}
	q, _ := d.Quantity(0, 0)
	if !q.Equal(QuantityFromInt(4)) {
		t.Errorf("Expected Juan untouched by clear, got %s", q)
	}
}

func TestDraft_UpdateItemFieldPropagatesToEntries(t *testing.T) {
	d, _ := NewDraft().AddItem(ItemSpec{ItemName: "Seed", Unit: "kg"})
	d, _ = d.AddBeneficiary(farmer(1, "Juan"))

	var err error
	d, err = d.UpdateItemField(0, FieldUnit, "sack")
	if err != nil {
		t.Fatalf("update unit: %v", err)
	}
	d, err = d.UpdateItemField(0, FieldAssistanceType, "voucher")
	if err != nil {
		t.Fatalf("update assistance type: %v", err)
	}
	d, err = d.UpdateItemField(0, FieldInventoryID, "42")
	if err != nil {
		t.Fatalf("update inventory id: %v", err)
	}

	alloc, _ := d.Allocation(0)
	entry := alloc.Entries[0]
	if entry.Unit != "sack" || entry.AssistanceType != Voucher || entry.InventoryID != SomeInventoryID(42) {
		t.Errorf("Entry not derived from item: %+v", entry)
	}
	item, _ := d.Item(0)
	if !item.IsFromInventory {
		t.Error("Expected IsFromInventory after binding an inventory id")
	}

	d, _ = d.UpdateItemField(0, FieldInventoryID, "")
	item, _ = d.Item(0)
	if item.IsFromInventory || item.Tracked() {
		t.Error("Expected clearing the inventory id to untrack the item")
	}

	if _, err := d.UpdateItemField(0, FieldAssistanceType, "loan"); !errors.Is(err, ErrInvalidField) {
		t.Errorf("Expected ErrInvalidField, got %v", err)
	}
}

func TestDraft_BindInventory(t *testing.T) {
	d, _ := NewDraft().AddItem(ItemSpec{ItemName: "placeholder"})
	inv := InventoryItem{
		ID:       9,
		ItemName: "Urea 46-0-0",
		Unit:     "bag",
		OnHand:   decimal.NewFromInt(120),
		Reserved: decimal.NewFromInt(20),
	}

	d, err := d.BindInventory(0, inv)
	if err != nil {
		t.Fatalf("BindInventory failed: %v", err)
	}
	item, _ := d.Item(0)
	if item.ItemName != "Urea 46-0-0" || item.Unit != "bag" {
		t.Errorf("Expected name and unit copied from inventory, got %+v", item)
	}
	if !item.OriginalStock.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected original stock 100, got %s", item.OriginalStock)
	}
	if !item.Tracked() || !item.IsFromInventory {
		t.Error("Expected item to be tracked")
	}
}

func TestDraft_UpdateInventoryIDDropsCapturedStock(t *testing.T) {
	d, _ := NewDraft().AddItem(fertilizerSpec())

	d, err := d.UpdateItemField(0, FieldInventoryID, "1")
	if err != nil {
		t.Fatalf("update inventory id: %v", err)
	}
	item, _ := d.Item(0)
	if !item.OriginalStock.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected same id to keep stock 50, got %s", item.OriginalStock)
	}

	d, err = d.UpdateItemField(0, FieldInventoryID, "7")
	if err != nil {
		t.Fatalf("update inventory id: %v", err)
	}
	item, _ = d.Item(0)
	if !item.OriginalStock.IsZero() {
		t.Errorf("Expected stock of record 1 to be dropped, got %s", item.OriginalStock)
	}

	d, _ = d.BindInventory(0, InventoryItem{ID: 7, ItemName: "Urea", Unit: "bag", OnHand: decimal.NewFromInt(30)})
	item, _ = d.Item(0)
	if !item.OriginalStock.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Expected bound stock 30, got %s", item.OriginalStock)
	}
}
