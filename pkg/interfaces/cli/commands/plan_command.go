package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/infrastructure/repositories/yaml"
	"github.com/vsinha/subsidy/pkg/interfaces/cli/output"
)

func newPlanCommand(flags *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <program.yaml>",
		Short: "Project stock usage of a program draft without submitting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output.Plan(cmd.OutOrStdout(), report, a.outputConfig())
		},
	}
}

// plan loads the reference data, replays the program file and reports the
// settled projection
func (a *app) plan(ctx context.Context, path string) (dto.PlanReport, error) {
	program, err := yaml.LoadProgram(path)
	if err != nil {
		return dto.PlanReport{}, err
	}

	s := a.newSession()
	defer s.Close()

	if err := s.Open(ctx); err != nil {
		return dto.PlanReport{}, fmt.Errorf("failed to open session: %w", err)
	}
	if err := buildDraft(s, program, a.logger); err != nil {
		return dto.PlanReport{}, fmt.Errorf("failed to build draft from %s: %w", path, err)
	}

	projection := s.Settle()
	return planReport(s.Store().Draft(), projection), nil
}
