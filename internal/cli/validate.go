package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackpact/stackpact/internal/core/pipeline"
)

// newValidateCommand creates the "validate" subcommand that runs the full
// policy check without applying.
func newValidateCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate rendered artifacts against stack policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			req, err := buildRequest(opts, cfg)
			if err != nil {
				return err
			}

			runner := &pipeline.Runner{Logger: logger}
			result, err := runner.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			if len(result.Violations) > 0 {
				printViolations(cmd.OutOrStdout(), result)
				return terminalError(result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\t%s\n", result.Identity.Stack, result.Identity.AppHost)
			return nil
		},
	}

	return cmd
}
