package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the subsidy CLI
func NewRootCommand() *cobra.Command {
	var flags Config

	root := &cobra.Command{
		Use:   "subsidy",
		Short: "Plan and submit subsidy programs against live inventory",
		Long: `Builds a subsidy program draft from a YAML file, projects its stock
usage against the current inventory and submits it for creation.

Offline mode reads inventory.csv and beneficiaries.csv and checks stock
the way the server does, so a program can be rehearsed without the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.EnvFile, "env-file", "", "Path to a .env file (default: .env when present)")
	pf.BoolVar(&flags.Offline, "offline", false, "Use local CSV data instead of the API")
	pf.StringVar(&flags.ScenarioDir, "scenario", "", "Directory containing inventory.csv and beneficiaries.csv (offline)")
	pf.StringVar(&flags.InventoryFile, "inventory", "", "Path to inventory CSV file (offline)")
	pf.StringVar(&flags.BeneficiariesFile, "beneficiaries", "", "Path to beneficiaries CSV file (offline)")
	pf.StringVarP(&flags.Format, "format", "f", "text", "Output format: text, json")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newPlanCommand(&flags),
		newSubmitCommand(&flags),
		newInventoryCommand(&flags),
	)
	return root
}
