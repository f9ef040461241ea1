package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/subsidy/pkg/application/dto"
	"github.com/vsinha/subsidy/pkg/infrastructure/events"
	"github.com/vsinha/subsidy/pkg/infrastructure/repositories/yaml"
	"github.com/vsinha/subsidy/pkg/interfaces/cli/output"
)

func newSubmitCommand(flags *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <program.yaml>",
		Short: "Validate a program draft and submit it for creation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*flags)
			if err != nil {
				return err
			}
			defer a.close()

			outcome, trail, submitErr := a.submit(cmd.Context(), args[0])
			if outcome == nil {
				return submitErr
			}
			cfg := a.outputConfig()
			if err := output.Outcome(cmd.OutOrStdout(), *outcome, cfg); err != nil {
				return err
			}
			if cfg.Verbose {
				// keep stdout a single JSON document
				w := cmd.OutOrStdout()
				if cfg.Format == "json" {
					w = cmd.ErrOrStderr()
				}
				if err := output.Trail(w, trail, cfg); err != nil {
					return err
				}
			}
			return submitErr
		},
	}
}

// submit replays the program file and sends it, returning the outcome and
// the session's event trail. A nil outcome means the draft could not be
// built at all.
func (a *app) submit(ctx context.Context, path string) (*dto.SubmissionOutcome, []events.Event, error) {
	program, err := yaml.LoadProgram(path)
	if err != nil {
		return nil, nil, err
	}

	s := a.newSession()
	defer s.Close()

	if err := s.Open(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to open session: %w", err)
	}
	if err := buildDraft(s, program, a.logger); err != nil {
		return nil, nil, fmt.Errorf("failed to build draft from %s: %w", path, err)
	}

	outcome, err := s.Submit(ctx)
	if err != nil {
		a.logger.Debug("submission not accepted",
			zap.String("outcome", outcome.Kind.String()),
			zap.Error(err))
	}
	trail, historyErr := s.History()
	if historyErr != nil {
		a.logger.Warn("failed to read session history", zap.Error(historyErr))
	}
	return &outcome, trail, err
}
