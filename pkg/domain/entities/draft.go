package entities

import (
	"fmt"
	"time"
)

// ProgramMeta holds the scalar fields of a program draft
type ProgramMeta struct {
	Title       string
	Description string
	Barangay    string
	StartDate   time.Time
	EndDate     time.Time
}

type allocationKey struct {
	beneficiary BeneficiaryID
	item        ItemID
}

// Draft is an in-progress subsidy program. It is an immutable value: every
// mutation returns a new Draft and leaves the receiver untouched.
//
// Quantities are stored sparsely by (beneficiary, item id), so every
// beneficiary's entry list is aligned with the item list by construction.
type Draft struct {
	meta          ProgramMeta
	items         []ProgramItem
	beneficiaries []Beneficiary
	quantities    map[allocationKey]Quantity
}

// NewDraft creates an empty draft
func NewDraft() Draft {
	return Draft{quantities: make(map[allocationKey]Quantity)}
}

func (d Draft) clone() Draft {
	c := Draft{
		meta:          d.meta,
		items:         make([]ProgramItem, len(d.items)),
		beneficiaries: make([]Beneficiary, len(d.beneficiaries)),
		quantities:    make(map[allocationKey]Quantity, len(d.quantities)),
	}
	copy(c.items, d.items)
	copy(c.beneficiaries, d.beneficiaries)
	for k, v := range d.quantities {
		c.quantities[k] = v
	}
	return c
}

// Meta returns the program metadata
func (d Draft) Meta() ProgramMeta {
	return d.meta
}

// ItemCount returns the number of program items
func (d Draft) ItemCount() int {
	return len(d.items)
}

// BeneficiaryCount returns the number of beneficiaries
func (d Draft) BeneficiaryCount() int {
	return len(d.beneficiaries)
}

// Items returns the program items in insertion order
func (d Draft) Items() []ProgramItem {
	items := make([]ProgramItem, len(d.items))
	copy(items, d.items)
	return items
}

// Item returns the program item at index
func (d Draft) Item(index int) (ProgramItem, error) {
	if index < 0 || index >= len(d.items) {
		return ProgramItem{}, fmt.Errorf("item %d: %w", index, ErrIndexOutOfRange)
	}
	return d.items[index], nil
}

// Beneficiaries returns the beneficiaries in insertion order
func (d Draft) Beneficiaries() []Beneficiary {
	beneficiaries := make([]Beneficiary, len(d.beneficiaries))
	copy(beneficiaries, d.beneficiaries)
	return beneficiaries
}

// HasBeneficiary reports whether a beneficiary id is already in the draft
func (d Draft) HasBeneficiary(id BeneficiaryID) bool {
	for _, b := range d.beneficiaries {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Quantity returns the quantity for a beneficiary and item index
func (d Draft) Quantity(beneficiaryIndex, itemIndex int) (Quantity, error) {
	if err := d.checkBeneficiary(beneficiaryIndex); err != nil {
		return Unset, err
	}
	if err := d.checkItem(itemIndex); err != nil {
		return Unset, err
	}
	return d.quantities[d.key(beneficiaryIndex, itemIndex)], nil
}

// Allocation returns the derived allocation view of one beneficiary
func (d Draft) Allocation(beneficiaryIndex int) (BeneficiaryAllocation, error) {
	if err := d.checkBeneficiary(beneficiaryIndex); err != nil {
		return BeneficiaryAllocation{}, err
	}
	return d.allocation(beneficiaryIndex), nil
}

// Allocations returns the derived allocation view of every beneficiary
func (d Draft) Allocations() []BeneficiaryAllocation {
	allocations := make([]BeneficiaryAllocation, len(d.beneficiaries))
	for i := range d.beneficiaries {
		allocations[i] = d.allocation(i)
	}
	return allocations
}

func (d Draft) allocation(beneficiaryIndex int) BeneficiaryAllocation {
	b := d.beneficiaries[beneficiaryIndex]
	entries := make([]AllocationEntry, len(d.items))
	for i, item := range d.items {
		entries[i] = AllocationEntry{
			ItemID:         item.ID,
			ItemName:       item.ItemName,
			Quantity:       d.quantities[allocationKey{beneficiary: b.ID, item: item.ID}],
			InventoryID:    item.InventoryID,
			Unit:           item.Unit,
			AssistanceType: item.AssistanceType,
		}
	}
	return BeneficiaryAllocation{Beneficiary: b, Entries: entries}
}

// WithMeta replaces the program metadata
func (d Draft) WithMeta(meta ProgramMeta) Draft {
	c := d.clone()
	c.meta = meta
	return c
}

// AddItem appends a program item. Every beneficiary gains an unset entry for it.
func (d Draft) AddItem(spec ItemSpec) (Draft, ProgramItem) {
	item := NewProgramItem(spec)
	c := d.clone()
	c.items = append(c.items, item)
	return c, item
}

// RemoveItem removes the item at index together with every beneficiary's entry for it
func (d Draft) RemoveItem(index int) (Draft, error) {
	if err := d.checkItem(index); err != nil {
		return d, err
	}
	removed := d.items[index].ID
	c := d.clone()
	c.items = append(c.items[:index], c.items[index+1:]...)
	for k := range c.quantities {
		if k.item == removed {
			delete(c.quantities, k)
		}
	}
	return c, nil
}

// UpdateItemField edits one field of the item at index
func (d Draft) UpdateItemField(index int, field ItemField, value string) (Draft, error) {
	if err := d.checkItem(index); err != nil {
		return d, err
	}
	updated, err := d.items[index].WithField(field, value)
	if err != nil {
		return d, err
	}
	c := d.clone()
	c.items[index] = updated
	return c, nil
}

// BindInventory binds the item at index to an inventory record
func (d Draft) BindInventory(index int, inv InventoryItem) (Draft, error) {
	if err := d.checkItem(index); err != nil {
		return d, err
	}
	c := d.clone()
	c.items[index] = c.items[index].BoundTo(inv)
	return c, nil
}

// AddBeneficiary appends a beneficiary with unset entries for every item
func (d Draft) AddBeneficiary(candidate Beneficiary) (Draft, error) {
	if d.HasBeneficiary(candidate.ID) {
		return d, fmt.Errorf("beneficiary %d (%s): %w", candidate.ID, candidate.Name, ErrDuplicateBeneficiary)
	}
	c := d.clone()
	c.beneficiaries = append(c.beneficiaries, candidate)
	return c, nil
}

// AddManyBeneficiaries adds up to limit candidates in order, skipping any
// already present. It returns the new draft and how many were added.
func (d Draft) AddManyBeneficiaries(candidates []Beneficiary, limit int) (Draft, int) {
	if limit <= 0 || len(candidates) == 0 {
		return d, 0
	}
	c := d.clone()
	added := 0
	for _, candidate := range candidates {
		if added >= limit {
			break
		}
		if c.HasBeneficiary(candidate.ID) {
			continue
		}
		c.beneficiaries = append(c.beneficiaries, candidate)
		added++
	}
	return c, added
}

// RemoveBeneficiary removes the beneficiary at index and its quantities
func (d Draft) RemoveBeneficiary(index int) (Draft, error) {
	if err := d.checkBeneficiary(index); err != nil {
		return d, err
	}
	removed := d.beneficiaries[index].ID
	c := d.clone()
	c.beneficiaries = append(c.beneficiaries[:index], c.beneficiaries[index+1:]...)
	for k := range c.quantities {
		if k.beneficiary == removed {
			delete(c.quantities, k)
		}
	}
	return c, nil
}

// SetQuantity sets one cell from raw input; see ParseQuantity
func (d Draft) SetQuantity(beneficiaryIndex, itemIndex int, raw string) (Draft, error) {
	if err := d.checkBeneficiary(beneficiaryIndex); err != nil {
		return d, err
	}
	if err := d.checkItem(itemIndex); err != nil {
		return d, err
	}
	c := d.clone()
	c.put(c.key(beneficiaryIndex, itemIndex), ParseQuantity(raw))
	return c, nil
}

// BulkSetQuantity applies values to every listed beneficiary. Items whose
// bulk value is empty are left untouched, as are items not in values.
func (d Draft) BulkSetQuantity(beneficiaryIndices []int, values map[int]string) (Draft, error) {
	for _, b := range beneficiaryIndices {
		if err := d.checkBeneficiary(b); err != nil {
			return d, err
		}
	}
	for i := range values {
		if err := d.checkItem(i); err != nil {
			return d, err
		}
	}
	c := d.clone()
	for _, b := range beneficiaryIndices {
		for i, raw := range values {
			q := ParseQuantity(raw)
			if !q.IsSet() {
				continue
			}
			c.put(c.key(b, i), q)
		}
	}
	return c, nil
}

// ClearQuantities unsets every entry of the listed beneficiaries
func (d Draft) ClearQuantities(beneficiaryIndices []int) (Draft, error) {
	for _, b := range beneficiaryIndices {
		if err := d.checkBeneficiary(b); err != nil {
			return d, err
		}
	}
	c := d.clone()
	for _, b := range beneficiaryIndices {
		id := c.beneficiaries[b].ID
		for k := range c.quantities {
			if k.beneficiary == id {
				delete(c.quantities, k)
			}
		}
	}
	return c, nil
}

// AvailablePool returns the candidates not yet in the draft, optionally
// restricted to one barangay
func AvailablePool(d Draft, candidates []Beneficiary, barangay string) []Beneficiary {
	var pool []Beneficiary
	for _, candidate := range candidates {
		if d.HasBeneficiary(candidate.ID) || !candidate.InBarangay(barangay) {
			continue
		}
		pool = append(pool, candidate)
	}
	return pool
}

func (d Draft) key(beneficiaryIndex, itemIndex int) allocationKey {
	return allocationKey{beneficiary: d.beneficiaries[beneficiaryIndex].ID, item: d.items[itemIndex].ID}
}

func (d Draft) put(k allocationKey, q Quantity) {
	if !q.IsSet() {
		delete(d.quantities, k)
		return
	}
	d.quantities[k] = q
}

func (d Draft) checkItem(index int) error {
	if index < 0 || index >= len(d.items) {
		return fmt.Errorf("item %d of %d: %w", index, len(d.items), ErrIndexOutOfRange)
	}
	return nil
}

func (d Draft) checkBeneficiary(index int) error {
	if index < 0 || index >= len(d.beneficiaries) {
		return fmt.Errorf("beneficiary %d of %d: %w", index, len(d.beneficiaries), ErrIndexOutOfRange)
	}
	return nil
}
