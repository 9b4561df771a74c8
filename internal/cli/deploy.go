package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stackpact/stackpact/internal/config"
	"github.com/stackpact/stackpact/internal/core/pipeline"
	"github.com/stackpact/stackpact/internal/shell/authz"
	"github.com/stackpact/stackpact/internal/shell/docker"
	remoteinventory "github.com/stackpact/stackpact/internal/shell/inventory"
	"github.com/stackpact/stackpact/internal/shell/store"
)

// newDeployCommand creates the "deploy" subcommand. Without --apply it is a
// dry run: full validation against the live inventory, no mutation.
func newDeployCommand(opts *Options) *cobra.Command {
	var (
		apply   bool
		target  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Validate and apply artifacts to the target runtime",
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
			req.WantsApply = apply
			req.ApplyTimeout = timeout

			if target != "docker" {
				return fmt.Errorf("unsupported deploy target: %s", target)
			}

			client, err := docker.NewClient(cfg.Docker.Host)
			if err != nil {
				return err
			}
			defer client.Close()

			inventorySource, err := buildInventorySource(cfg, client, logger)
			if err != nil {
				return err
			}

			runner := &pipeline.Runner{
				Adapter:   docker.NewComposeAdapter(client, logger),
				Inventory: inventorySource,
				Gate:      authz.NewFileToggle(cfg.Gate.TogglePath),
				Logger:    logger,
			}

			result, runErr := runner.Run(cmd.Context(), req)
			recordRun(cmd, cfg, result, logger)

			if runErr != nil {
				return runErr
			}
			if len(result.Violations) > 0 {
				printViolations(cmd.OutOrStdout(), result)
				return terminalError(result)
			}

			if result.Applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied\t%s\t%s\n", result.Identity.Stack, result.Identity.AppHost)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\t%s\n", result.Identity.Stack, result.Identity.AppHost)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Apply artifacts after a clean validation")
	cmd.Flags().StringVar(&target, "target", "docker", "Target runtime")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Bound on the apply step")

	return cmd
}

// buildInventorySource selects the inventory backend: a remote provider when
// configured, the local engine otherwise.
func buildInventorySource(cfg *config.Config, client *docker.Client, logger *slog.Logger) (pipeline.InventorySource, error) {
	if cfg.Inventory.Provider == "" {
		return docker.NewInventorySource(client), nil
	}
	return remoteinventory.NewProvider(cfg.Inventory.Provider, remoteinventory.Credentials{
		Region:          cfg.Inventory.Region,
		AccessKeyID:     cfg.Inventory.AccessKeyID,
		SecretAccessKey: cfg.Inventory.SecretAccessKey,
		APIToken:        cfg.Inventory.APIToken,
	}, logger)
}

// recordRun persists the run outcome when history is enabled. Persistence
// failures never fail the run.
func recordRun(cmd *cobra.Command, cfg *config.Config, result pipeline.Result, logger *slog.Logger) {
	if cfg.History.DSN == "" || result.Identity.Stack == "" {
		return
	}
	history, err := store.NewSQLiteStore(cfg.History.DSN)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return
	}
	defer history.Close()

	record := &store.RunRecord{
		ID:          uuid.NewString(),
		Stack:       result.Identity.Stack,
		Environment: string(result.Identity.Environment),
		State:       result.State,
		Violations:  result.Violations,
		Applied:     result.Applied,
	}
	if err := history.RecordRun(cmd.Context(), record); err != nil {
		logger.Warn("failed to persist run", "run_id", record.ID, "error", err)
	}
}
