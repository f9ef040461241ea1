// Package yaml reads program drafts written by hand as YAML files.
package yaml

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/subsidy/pkg/domain/entities"
)

const dateLayout = "2006-01-02"

// ProgramFile is a program draft as written on disk
type ProgramFile struct {
	Title         string            `yaml:"title"`
	Description   string            `yaml:"description,omitempty"`
	Barangay      string            `yaml:"barangay,omitempty"`
	StartDate     string            `yaml:"start_date"`
	EndDate       string            `yaml:"end_date"`
	Items         []ItemLine        `yaml:"items"`
	Beneficiaries []BeneficiaryLine `yaml:"beneficiaries,omitempty"`
	AddAll        *AddAll           `yaml:"add_all,omitempty"`
	Bulk          []BulkLine        `yaml:"bulk,omitempty"`
}

// ItemLine declares one program item. When InventoryID is set the item is
// bound to that stock record and OriginalStock is only used if the record
// is missing from the loaded inventory.
type ItemLine struct {
	ItemName       string `yaml:"item_name"`
	Unit           string `yaml:"unit"`
	AssistanceType string `yaml:"assistance_type,omitempty"`
	InventoryID    *int64 `yaml:"inventory_id,omitempty"`
	OriginalStock  string `yaml:"original_stock,omitempty"`
	Cost           string `yaml:"cost,omitempty"`
}

// BeneficiaryLine adds one registry beneficiary with quantities keyed by item name
type BeneficiaryLine struct {
	ID         int64             `yaml:"id"`
	Quantities map[string]string `yaml:"quantities,omitempty"`
}

// AddAll adds every registry beneficiary of a barangay, up to the bulk limit
type AddAll struct {
	Barangay string `yaml:"barangay"`
}

// BulkLine sets the same quantities for several beneficiaries at once.
// An empty ID list targets every beneficiary in the draft.
type BulkLine struct {
	BeneficiaryIDs []int64           `yaml:"beneficiary_ids,omitempty"`
	Quantities     map[string]string `yaml:"quantities"`
}

// LoadProgram reads a program file from disk
func LoadProgram(path string) (*ProgramFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file %s: %w", path, err)
	}
	defer file.Close()

	return ReadProgram(file)
}

// ReadProgram parses a program file
func ReadProgram(r io.Reader) (*ProgramFile, error) {
	var f ProgramFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse program YAML: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Meta returns the program header. Blank dates stay zero so that draft
// validation reports them.
func (f *ProgramFile) Meta() (entities.ProgramMeta, error) {
	start, err := parseDate(f.StartDate)
	if err != nil {
		return entities.ProgramMeta{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseDate(f.EndDate)
	if err != nil {
		return entities.ProgramMeta{}, fmt.Errorf("end_date: %w", err)
	}
	return entities.ProgramMeta{
		Title:       f.Title,
		Description: f.Description,
		Barangay:    f.Barangay,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// Spec converts the line to an item spec
func (l ItemLine) Spec() (entities.ItemSpec, error) {
	assistance, err := entities.ParseAssistanceType(l.AssistanceType)
	if err != nil {
		return entities.ItemSpec{}, err
	}
	spec := entities.ItemSpec{
		ItemName:       l.ItemName,
		Unit:           l.Unit,
		AssistanceType: assistance,
	}
	if l.InventoryID != nil {
		spec.InventoryID = entities.SomeInventoryID(entities.InventoryID(*l.InventoryID))
	}
	if spec.OriginalStock, err = parseDecimal(l.OriginalStock); err != nil {
		return entities.ItemSpec{}, fmt.Errorf("original_stock: %w", err)
	}
	if spec.Cost, err = parseDecimal(l.Cost); err != nil {
		return entities.ItemSpec{}, fmt.Errorf("cost: %w", err)
	}
	return spec, nil
}

// check rejects references that cannot be resolved within the file
func (f *ProgramFile) check() error {
	names := make(map[string]bool, len(f.Items))
	for i, item := range f.Items {
		if item.ItemName != "" {
			if names[item.ItemName] {
				return fmt.Errorf("items[%d]: duplicate item name %q", i, item.ItemName)
			}
			names[item.ItemName] = true
		}
		if _, err := item.Spec(); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
	}
	for i, b := range f.Beneficiaries {
		for name := range b.Quantities {
			if !names[name] {
				return fmt.Errorf("beneficiaries[%d]: unknown item %q", i, name)
			}
		}
	}
	for i, bulk := range f.Bulk {
		for name := range bulk.Quantities {
			if !names[name] {
				return fmt.Errorf("bulk[%d]: unknown item %q", i, name)
			}
		}
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
