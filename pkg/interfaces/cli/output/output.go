package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/domain/entities"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
)

// Config holds configuration for output generation
type Config struct {
	Format  string
	Verbose bool
}

// Validate rejects unknown formats before any work is done
func (c Config) Validate() error {
	switch c.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}
}

// Plan writes a plan report
func Plan(w io.Writer, report dto.PlanReport, config Config) error {
	if config.Format == "json" {
		return writeJSON(w, report)
	}

	fmt.Fprintf(w, "📋 %s\n", orDash(report.Title))
	fmt.Fprintf(w, "======================\n\n")
	if report.Barangay != "" {
		fmt.Fprintf(w, "Barangay: %s\n", report.Barangay)
	}
	fmt.Fprintf(w, "Period: %s to %s\n", orDash(report.StartDate), orDash(report.EndDate))
	fmt.Fprintf(w, "Items: %d\n", report.ItemCount)
	fmt.Fprintf(w, "Beneficiaries: %d\n\n", report.BeneficiaryCount)

	writeStock(w, report.Stock)

	if report.Ready() {
		fmt.Fprintf(w, "✅ Ready to submit\n")
		return nil
	}
	fmt.Fprintf(w, "⚠️  Not ready to submit:\n")
	for _, p := range report.Problems {
		fmt.Fprintf(w, "  %s: %s\n", p.Field, p.Message)
	}
	return nil
}

// Outcome writes the result of a submit attempt
func Outcome(w io.Writer, outcome dto.SubmissionOutcome, config Config) error {
	if config.Format == "json" {
		return writeJSON(w, outcome)
	}

	switch outcome.Kind {
	case dto.OutcomeCreated:
		id := ""
		if outcome.Program != nil {
			id = string(outcome.Program.ID)
		}
		fmt.Fprintf(w, "✅ Program created (id %s): %d beneficiaries, %d items\n",
			orDash(id), outcome.BeneficiaryCount, outcome.ItemCount)
	case dto.OutcomeRejectedLocally:
		fmt.Fprintf(w, "⚠️  Not submitted: %s\n", outcome.Message)
		for _, p := range outcome.Problems {
			fmt.Fprintf(w, "  %s: %s\n", p.Field, p.Message)
		}
	case dto.OutcomeConflict:
		fmt.Fprintf(w, "❌ %s\n\n", outcome.Message)
		writeConflicts(w, outcome.Conflicts)
	default:
		fmt.Fprintf(w, "❌ %s\n", outcome.Message)
	}
	return nil
}

// Inventory writes the stock records with their available quantity
func Inventory(w io.Writer, items []entities.InventoryItem, config Config) error {
	if config.Format == "json" {
		type line struct {
			entities.InventoryItem
			Available string `json:"availableStock"`
		}
		lines := make([]line, len(items))
		for i, item := range items {
			lines[i] = line{InventoryItem: item, Available: item.AvailableStock().String()}
		}
		return writeJSON(w, lines)
	}

	fmt.Fprintf(w, "📦 Inventory:\n")
	fmt.Fprintf(w, "%-6s %-25s %-10s %-10s %-10s %-10s\n",
		"ID", "Item", "Unit", "On Hand", "Reserved", "Available")
	fmt.Fprintf(w, "%-6s %-25s %-10s %-10s %-10s %-10s\n",
		"------", "-------------------------", "----------", "----------", "----------", "----------")
	for _, item := range items {
		fmt.Fprintf(w, "%-6d %-25s %-10s %-10s %-10s %-10s\n",
			item.ID,
			item.ItemName,
			item.Unit,
			item.OnHand,
			item.Reserved,
			item.AvailableStock())
	}
	return nil
}

// Trail writes a session's event trail
func Trail(w io.Writer, trail []events.Event, config Config) error {
	if config.Format == "json" {
		type entry struct {
			Version   int         `json:"version"`
			Type      string      `json:"type"`
			Timestamp string      `json:"timestamp"`
			Data      interface{} `json:"data"`
		}
		entries := make([]entry, len(trail))
		for i, e := range trail {
			entries[i] = entry{
				Version:   e.Version(),
				Type:      e.Type(),
				Timestamp: e.Timestamp().Format("2006-01-02T15:04:05.000Z07:00"),
				Data:      e.Data(),
			}
		}
		return writeJSON(w, entries)
	}

	fmt.Fprintf(w, "\n🧾 Session trail:\n")
	for _, e := range trail {
		fmt.Fprintf(w, "  %3d  %-28s %s\n", e.Version(), e.Type(), describeEvent(e))
	}
	return nil
}

func describeEvent(e events.Event) string {
	switch data := e.Data().(type) {
	case events.DraftChanged:
		if data.Detail != "" {
			return fmt.Sprintf("%s (%s) items=%d beneficiaries=%d", data.Command, data.Detail, data.ItemCount, data.BeneficiaryCount)
		}
		return fmt.Sprintf("%s items=%d beneficiaries=%d", data.Command, data.ItemCount, data.BeneficiaryCount)
	case events.DraftCommandRejected:
		return fmt.Sprintf("%s rejected: %s", data.Command, data.Reason)
	case events.InventoryRefreshed:
		return fmt.Sprintf("%d inventory records", data.ItemCount)
	case events.ProjectionRecomputed:
		return fmt.Sprintf("%d tracked, %d over-allocated", data.TrackedItems, data.OverAllocated)
	case events.SubmissionSettled:
		if data.ProgramID != "" {
			return fmt.Sprintf("%s: id %s", data.Outcome, data.ProgramID)
		}
		return fmt.Sprintf("%s: %s", data.Outcome, data.Message)
	default:
		return ""
	}
}

func writeStock(w io.Writer, stock []dto.StockLine) {
	if len(stock) == 0 {
		fmt.Fprintf(w, "No inventory-tracked items.\n\n")
		return
	}
	fmt.Fprintf(w, "📦 Stock projection:\n")
	fmt.Fprintf(w, "%-25s %-10s %-10s %-10s %-10s %-16s\n",
		"Item", "Unit", "Stock", "Allocated", "Remaining", "Status")
	fmt.Fprintf(w, "%-25s %-10s %-10s %-10s %-10s %-16s\n",
		"-------------------------", "----------", "----------", "----------", "----------", "----------------")
	for _, line := range stock {
		fmt.Fprintf(w, "%-25s %-10s %-10s %-10s %-10s %-16s\n",
			line.ItemName,
			line.Unit,
			line.OriginalStock,
			line.Allocated,
			line.Remaining,
			line.Status)
	}
	fmt.Fprintln(w)
}

func writeConflicts(w io.Writer, conflicts []entities.InventoryConflict) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintf(w, "%-25s %-10s %-10s %-10s %-10s\n",
		"Item", "Unit", "Required", "Available", "Shortage")
	fmt.Fprintf(w, "%-25s %-10s %-10s %-10s %-10s\n",
		"-------------------------", "----------", "----------", "----------", "----------")
	for _, c := range conflicts {
		fmt.Fprintf(w, "%-25s %-10s %-10s %-10s %-10s\n",
			c.ItemName, c.Unit, c.Required, c.Available, c.Shortage)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
