package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stackpact/stackpact/internal/core/pipeline"
)

// newRenderCommand creates the "render" subcommand that renders artifact
// templates with the resolved binding.
func newRenderCommand(opts *Options) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Resolve identity and render artifact templates",
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
				// Render still reports violations so authors see
				// problems early, but only the render outcome
				// decides the exit status here.
				printViolations(cmd.ErrOrStderr(), result)
			}

			if outputDir == "" {
				for _, artifact := range result.Rendered {
					fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", artifact.Name, artifact.Content)
				}
				return nil
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			for _, artifact := range result.Rendered {
				path := filepath.Join(outputDir, artifact.Name)
				if err := os.WriteFile(path, []byte(artifact.Content), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				logger.Info("artifact written", "path", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write rendered artifacts to (default stdout)")

	return cmd
}
