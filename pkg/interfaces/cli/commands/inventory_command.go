package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/subsidy/pkg/interfaces/cli/output"
)

func newInventoryCommand(flags *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "List inventory records with their available stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			defer a.close()

			items, err := a.inventory.ListInventoryItems(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list inventory: %w", err)
			}
			return output.Inventory(cmd.OutOrStdout(), items, a.outputConfig())
		},
	}
}
