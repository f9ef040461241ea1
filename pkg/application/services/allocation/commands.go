package allocation

import (
	"fmt"

	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
)

// Command is one draft mutation. Apply must not modify its input.
type Command interface {
	Name() string
	EventType() string
	Apply(draft entities.Draft) (entities.Draft, error)
}

// SetMeta replaces the program metadata
type SetMeta struct {
	Meta entities.ProgramMeta
}

func (c *SetMeta) Name() string      { return "set_meta" }
func (c *SetMeta) EventType() string { return events.DraftMetaUpdatedEvent }

func (c *SetMeta) Apply(d entities.Draft) (entities.Draft, error) {
	return d.WithMeta(c.Meta), nil
}

// AddItem appends a program item; Added holds the created item after Apply
type AddItem struct {
	Spec  entities.ItemSpec
	Added entities.ProgramItem
}

func (c *AddItem) Name() string      { return "add_item" }
func (c *AddItem) EventType() string { return events.DraftItemAddedEvent }

func (c *AddItem) Apply(d entities.Draft) (entities.Draft, error) {
	next, item := d.AddItem(c.Spec)
	c.Added = item
	return next, nil
}

// RemoveItem removes a program item and its aligned entries
type RemoveItem struct {
	Index int
}

func (c *RemoveItem) Name() string      { return "remove_item" }
func (c *RemoveItem) EventType() string { return events.DraftItemRemovedEvent }

func (c *RemoveItem) Apply(d entities.Draft) (entities.Draft, error) {
	return d.RemoveItem(c.Index)
}

// UpdateItemField edits one field of a program item
type UpdateItemField struct {
	Index int
	Field entities.ItemField
	Value string
}

func (c *UpdateItemField) Name() string      { return "update_item_field" }
func (c *UpdateItemField) EventType() string { return events.DraftItemUpdatedEvent }

func (c *UpdateItemField) Apply(d entities.Draft) (entities.Draft, error) {
	return d.UpdateItemField(c.Index, c.Field, c.Value)
}

// BindInventory binds a program item to an inventory record
type BindInventory struct {
	Index     int
	Inventory entities.InventoryItem
}

func (c *BindInventory) Name() string      { return "bind_inventory" }
func (c *BindInventory) EventType() string { return events.DraftItemBoundEvent }

func (c *BindInventory) Apply(d entities.Draft) (entities.Draft, error) {
	return d.BindInventory(c.Index, c.Inventory)
}

// AddBeneficiary appends one beneficiary
type AddBeneficiary struct {
	Candidate entities.Beneficiary
}

func (c *AddBeneficiary) Name() string      { return "add_beneficiary" }
func (c *AddBeneficiary) EventType() string { return events.DraftBeneficiaryAddedEvent }

func (c *AddBeneficiary) Apply(d entities.Draft) (entities.Draft, error) {
	return d.AddBeneficiary(c.Candidate)
}

// AddManyBeneficiaries adds up to Limit candidates; Added holds the count after Apply
type AddManyBeneficiaries struct {
	Candidates []entities.Beneficiary
	Limit      int
	Added      int
}

func (c *AddManyBeneficiaries) Name() string      { return "add_many_beneficiaries" }
func (c *AddManyBeneficiaries) EventType() string { return events.DraftBeneficiariesAddedEvent }

func (c *AddManyBeneficiaries) Apply(d entities.Draft) (entities.Draft, error) {
	next, added := d.AddManyBeneficiaries(c.Candidates, c.Limit)
	c.Added = added
	return next, nil
}

// RemoveBeneficiary removes one beneficiary and its quantities
type RemoveBeneficiary struct {
	Index int
}

func (c *RemoveBeneficiary) Name() string      { return "remove_beneficiary" }
func (c *RemoveBeneficiary) EventType() string { return events.DraftBeneficiaryRemovedEvent }

func (c *RemoveBeneficiary) Apply(d entities.Draft) (entities.Draft, error) {
	return d.RemoveBeneficiary(c.Index)
}

// SetQuantity sets one allocation cell from raw input
type SetQuantity struct {
	BeneficiaryIndex int
	ItemIndex        int
	Raw              string
}

func (c *SetQuantity) Name() string      { return "set_quantity" }
func (c *SetQuantity) EventType() string { return events.DraftQuantitySetEvent }

func (c *SetQuantity) Apply(d entities.Draft) (entities.Draft, error) {
	return d.SetQuantity(c.BeneficiaryIndex, c.ItemIndex, c.Raw)
}

// BulkSetQuantity merges item values into every listed beneficiary
type BulkSetQuantity struct {
	BeneficiaryIndices []int
	Values             map[int]string
}

func (c *BulkSetQuantity) Name() string      { return "bulk_set_quantity" }
func (c *BulkSetQuantity) EventType() string { return events.DraftQuantityBulkSetEvent }

func (c *BulkSetQuantity) Apply(d entities.Draft) (entities.Draft, error) {
	return d.BulkSetQuantity(c.BeneficiaryIndices, c.Values)
}

// ClearQuantities unsets every entry of the listed beneficiaries
type ClearQuantities struct {
	BeneficiaryIndices []int
}

func (c *ClearQuantities) Name() string      { return "clear_quantities" }
func (c *ClearQuantities) EventType() string { return events.DraftQuantitiesClearedEvent }

func (c *ClearQuantities) Apply(d entities.Draft) (entities.Draft, error) {
	return d.ClearQuantities(c.BeneficiaryIndices)
}

func describe(cmd Command) string {
	switch c := cmd.(type) {
	case *AddItem:
		return fmt.Sprintf("%s (%s)", c.Added.ItemName, c.Added.ID)
	case *RemoveItem:
		return fmt.Sprintf("index %d", c.Index)
	case *UpdateItemField:
		return fmt.Sprintf("index %d %s=%q", c.Index, c.Field, c.Value)
	case *BindInventory:
		return fmt.Sprintf("index %d -> inventory %d", c.Index, c.Inventory.ID)
	case *AddBeneficiary:
		return fmt.Sprintf("beneficiary %d", c.Candidate.ID)
	case *AddManyBeneficiaries:
		return fmt.Sprintf("%d of %d candidates", c.Added, len(c.Candidates))
	case *RemoveBeneficiary:
		return fmt.Sprintf("index %d", c.Index)
	case *SetQuantity:
		return fmt.Sprintf("[%d][%d]=%q", c.BeneficiaryIndex, c.ItemIndex, c.Raw)
	case *BulkSetQuantity:
		return fmt.Sprintf("%d beneficiaries x %d items", len(c.BeneficiaryIndices), len(c.Values))
	case *ClearQuantities:
		return fmt.Sprintf("%d beneficiaries", len(c.BeneficiaryIndices))
	default:
		return ""
	}
}
