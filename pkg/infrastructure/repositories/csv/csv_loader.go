package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

var (
	inventoryHeader     = []string{"id", "item_name", "unit", "on_hand", "reserved"}
	beneficiariesHeader = []string{"id", "name", "rsbsa_number", "address", "barangay", "commodity", "hectares"}
)

// Loader handles loading inventory and beneficiary records from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadInventory loads stock records from a CSV file
func (l *Loader) LoadInventory(filename string) ([]*entities.InventoryItem, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadInventory(file)
}

// ReadInventory parses stock records
func (l *Loader) ReadInventory(r io.Reader) ([]*entities.InventoryItem, error) {
	records, err := readRecords(r, "inventory", inventoryHeader)
	if err != nil {
		return nil, err
	}

	seen := make(map[entities.InventoryID]bool, len(records))
	var items []*entities.InventoryItem
	for i, record := range records {
		item, err := parseInventoryItem(record)
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("inventory CSV row %d: duplicate id %d", i+2, item.ID)
		}
		seen[item.ID] = true
		items = append(items, &item)
	}

	return items, nil
}

// LoadBeneficiaries loads registry records from a CSV file
func (l *Loader) LoadBeneficiaries(filename string) ([]*entities.Beneficiary, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open beneficiaries file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadBeneficiaries(file)
}

// ReadBeneficiaries parses registry records
func (l *Loader) ReadBeneficiaries(r io.Reader) ([]*entities.Beneficiary, error) {
	records, err := readRecords(r, "beneficiaries", beneficiariesHeader)
	if err != nil {
		return nil, err
	}

	var beneficiaries []*entities.Beneficiary
	for i, record := range records {
		b, err := parseBeneficiary(record)
		if err != nil {
			return nil, fmt.Errorf("beneficiaries CSV row %d: %w", i+2, err)
		}
		beneficiaries = append(beneficiaries, &b)
	}

	return beneficiaries, nil
}

// readRecords reads all rows, checks the header and returns the data rows
func readRecords(r io.Reader, kind string, expectedHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseInventoryItem(record []string) (entities.InventoryItem, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return entities.InventoryItem{}, fmt.Errorf("invalid id: %w", err)
	}

	name := strings.TrimSpace(record[1])
	if name == "" {
		return entities.InventoryItem{}, fmt.Errorf("item_name is required")
	}

	onHand, err := parseStock(record[3])
	if err != nil {
		return entities.InventoryItem{}, fmt.Errorf("invalid on_hand: %w", err)
	}

	reserved, err := parseStock(record[4])
	if err != nil {
		return entities.InventoryItem{}, fmt.Errorf("invalid reserved: %w", err)
	}

	return entities.InventoryItem{
		ID:       entities.InventoryID(id),
		ItemName: name,
		Unit:     strings.TrimSpace(record[2]),
		OnHand:   onHand,
		Reserved: reserved,
	}, nil
}

func parseBeneficiary(record []string) (entities.Beneficiary, error) {
	id, err := entities.NormalizeBeneficiaryID(strings.TrimSpace(record[0]))
	if err != nil {
		return entities.Beneficiary{}, fmt.Errorf("invalid id: %w", err)
	}

	hectares := decimal.Zero
	if raw := strings.TrimSpace(record[6]); raw != "" {
		hectares, err = decimal.NewFromString(raw)
		if err != nil {
			return entities.Beneficiary{}, fmt.Errorf("invalid hectares: %w", err)
		}
	}

	return entities.Beneficiary{
		ID:          id,
		Name:        strings.TrimSpace(record[1]),
		RSBSANumber: strings.TrimSpace(record[2]),
		Address:     strings.TrimSpace(record[3]),
		Barangay:    strings.TrimSpace(record[4]),
		Commodity:   strings.TrimSpace(record[5]),
		Hectares:    hectares,
	}, nil
}

func parseStock(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative, got %s", value)
	}
	return value, nil
}
