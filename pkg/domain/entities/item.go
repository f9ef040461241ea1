package entities

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemID identifies a program item for the lifetime of a draft
type ItemID string

// NewItemID generates a fresh client-side item identifier
func NewItemID() ItemID {
	return ItemID(uuid.NewString())
}

// InventoryID identifies a tracked inventory record on the server
type InventoryID int64

// NullInventoryID is an InventoryID that may be absent
type NullInventoryID struct {
	ID    InventoryID
	Valid bool
}

// SomeInventoryID wraps a present inventory id
func SomeInventoryID(id InventoryID) NullInventoryID {
	return NullInventoryID{ID: id, Valid: true}
}

func (n NullInventoryID) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatInt(int64(n.ID), 10)
}

// MarshalJSON writes null when the id is absent
func (n NullInventoryID) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(int64(n.ID))
}

// UnmarshalJSON accepts null, numbers and numeric strings
func (n *NullInventoryID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullInventoryID{}
		return nil
	}
	parsed, err := ParseNullInventoryID(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNullInventoryID parses an inventory id; empty input means no id
func ParseNullInventoryID(raw string) (NullInventoryID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NullInventoryID{}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return NullInventoryID{}, fmt.Errorf("invalid inventory id %q: %w", raw, err)
	}
	return SomeInventoryID(InventoryID(id)), nil
}

// AssistanceType classifies what a program item distributes
type AssistanceType int

const (
	Aid AssistanceType = iota
	Cash
	Gasoline
	Voucher
	Service
)

// String method for AssistanceType enum
func (a AssistanceType) String() string {
	switch a {
	case Aid:
		return "aid"
	case Cash:
		return "cash"
	case Gasoline:
		return "gasoline"
	case Voucher:
		return "voucher"
	case Service:
		return "service"
	default:
		return "unknown"
	}
}

// ParseAssistanceType parses the wire name of an assistance type
func ParseAssistanceType(s string) (AssistanceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aid", "":
		return Aid, nil
	case "cash":
		return Cash, nil
	case "gasoline":
		return Gasoline, nil
	case "voucher":
		return Voucher, nil
	case "service":
		return Service, nil
	default:
		return Aid, fmt.Errorf("invalid assistance type: %s (expected: aid, cash, gasoline, voucher, or service)", s)
	}
}

func (a AssistanceType) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AssistanceType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAssistanceType(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ItemSpec describes a program item to be added to a draft
type ItemSpec struct {
	ItemName       string
	Unit           string
	AssistanceType AssistanceType
	InventoryID    NullInventoryID
	OriginalStock  decimal.Decimal
	Cost           decimal.Decimal
}

// ProgramItem is one distributable line of a subsidy program
type ProgramItem struct {
	ID              ItemID
	ItemName        string
	Unit            string
	AssistanceType  AssistanceType
	InventoryID     NullInventoryID
	OriginalStock   decimal.Decimal
	IsFromInventory bool
	Cost            decimal.Decimal
}

// NewProgramItem builds a program item from a spec with a fresh id
func NewProgramItem(spec ItemSpec) ProgramItem {
	return ProgramItem{
		ID:              NewItemID(),
		ItemName:        spec.ItemName,
		Unit:            spec.Unit,
		AssistanceType:  spec.AssistanceType,
		InventoryID:     spec.InventoryID,
		OriginalStock:   spec.OriginalStock,
		IsFromInventory: spec.InventoryID.Valid,
		Cost:            spec.Cost,
	}
}

// Tracked reports whether the item is bound to an inventory record
func (p ProgramItem) Tracked() bool {
	return p.InventoryID.Valid
}

// ItemField names an editable field of a program item
type ItemField int

const (
	FieldItemName ItemField = iota
	FieldUnit
	FieldAssistanceType
	FieldInventoryID
	FieldCost
)

// String method for ItemField enum
func (f ItemField) String() string {
	switch f {
	case FieldItemName:
		return "itemName"
	case FieldUnit:
		return "unit"
	case FieldAssistanceType:
		return "assistanceType"
	case FieldInventoryID:
		return "inventoryId"
	case FieldCost:
		return "cost"
	default:
		return "unknown"
	}
}

// WithField returns a copy of the item with one field replaced.
// Values arrive as raw form input.
func (p ProgramItem) WithField(field ItemField, value string) (ProgramItem, error) {
	switch field {
	case FieldItemName:
		p.ItemName = value
	case FieldUnit:
		p.Unit = value
	case FieldAssistanceType:
		at, err := ParseAssistanceType(value)
		if err != nil {
			return p, fmt.Errorf("%w: %v", ErrInvalidField, err)
		}
		p.AssistanceType = at
	case FieldInventoryID:
		id, err := ParseNullInventoryID(value)
		if err != nil {
			return p, fmt.Errorf("%w: %v", ErrInvalidField, err)
		}
		// stock captured for another record no longer applies; BindInventory sets it
		if id != p.InventoryID {
			p.OriginalStock = decimal.Zero
		}
		p.InventoryID = id
		p.IsFromInventory = id.Valid
	case FieldCost:
		cost, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			cost = decimal.Zero
		}
		p.Cost = cost
	default:
		return p, fmt.Errorf("%w: %s", ErrInvalidField, field)
	}
	return p, nil
}

// BoundTo returns a copy of the item bound to an inventory record,
// capturing the record's name, unit and currently available stock
func (p ProgramItem) BoundTo(inv InventoryItem) ProgramItem {
	p.ItemName = inv.ItemName
	p.Unit = inv.Unit
	p.InventoryID = SomeInventoryID(inv.ID)
	p.OriginalStock = inv.AvailableStock()
	p.IsFromInventory = true
	return p
}
