package entities

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// BeneficiaryID is the registry id of a farmer beneficiary. Registry ids
// arrive as numbers or numeric strings and are normalized to int64 so that
// comparisons never depend on the wire representation.
type BeneficiaryID int64

// NormalizeBeneficiaryID coerces a registry id to its numeric form
func NormalizeBeneficiaryID(v interface{}) (BeneficiaryID, error) {
	switch id := v.(type) {
	case BeneficiaryID:
		return id, nil
	case int:
		return BeneficiaryID(id), nil
	case int32:
		return BeneficiaryID(id), nil
	case int64:
		return BeneficiaryID(id), nil
	case float64:
		if id != math.Trunc(id) {
			return 0, fmt.Errorf("beneficiary id must be integral, got %v", id)
		}
		return BeneficiaryID(id), nil
	case json.Number:
		return NormalizeBeneficiaryID(id.String())
	case string:
		trimmed := strings.TrimSpace(id)
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(trimmed, 64)
			if ferr != nil {
				return 0, fmt.Errorf("invalid beneficiary id %q", id)
			}
			return NormalizeBeneficiaryID(f)
		}
		return BeneficiaryID(n), nil
	default:
		return 0, fmt.Errorf("unsupported beneficiary id type %T", v)
	}
}

// UnmarshalJSON accepts both numeric and string ids
func (b *BeneficiaryID) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := NormalizeBeneficiaryID(raw)
	if err != nil {
		return err
	}
	*b = id
	return nil
}

// Beneficiary is a registry record. Display fields are captured when the
// beneficiary is added to a draft and are never re-synced.
type Beneficiary struct {
	ID          BeneficiaryID   `json:"id"`
	Name        string          `json:"name"`
	RSBSANumber string          `json:"rsbsaNumber"`
	Address     string          `json:"address"`
	Barangay    string          `json:"barangay,omitempty"`
	Commodity   string          `json:"commodity"`
	Hectares    decimal.Decimal `json:"hectares"`
}

// InBarangay reports whether the beneficiary belongs to the named barangay.
// An empty name matches everyone.
func (b Beneficiary) InBarangay(barangay string) bool {
	barangay = strings.TrimSpace(barangay)
	if barangay == "" {
		return true
	}
	if b.Barangay != "" {
		return strings.EqualFold(strings.TrimSpace(b.Barangay), barangay)
	}
	return strings.Contains(strings.ToLower(b.Address), strings.ToLower(barangay))
}

// AllocationEntry is a beneficiary's quantity for one program item, with the
// item's allocation-relevant fields derived from the item itself
type AllocationEntry struct {
	ItemID         ItemID
	ItemName       string
	Quantity       Quantity
	InventoryID    NullInventoryID
	Unit           string
	AssistanceType AssistanceType
}

// BeneficiaryAllocation is a beneficiary with entries aligned to the draft items
type BeneficiaryAllocation struct {
	Beneficiary Beneficiary
	Entries     []AllocationEntry
}
