// Package cli defines the command-line interface for stackpact.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackpact/stackpact/internal/config"
	"github.com/stackpact/stackpact/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	Stack      string
	Env        string
	EnvFile    string
	Templates  string
	Sets       []string
	LogLevel   logging.Level
}

// Execute builds the root command, runs it with the provided args and logger,
// and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo, "text")
	}

	rootOpts := &Options{
		LogLevel: logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and
// subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stackpact",
		Short:         "stackpact renders and validates deployment artifacts against stack policy",
		Long:          "stackpact resolves a stack identity, renders artifact templates, validates the result against namespace and portability policy, and gates production applies behind an explicit authorization toggle.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level, "text")
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&opts.Stack, "stack", "", "Stack identity token")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", "dev", "Target environment (dev, prod)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "Path to a dotenv file with binding inputs")
	cmd.PersistentFlags().StringVar(&opts.Templates, "templates", "", "Directory holding artifact templates")
	cmd.PersistentFlags().StringArrayVar(&opts.Sets, "set", nil, "Set a binding input (KEY=value, repeatable)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRenderCommand(opts),
		newValidateCommand(opts),
		newDeployCommand(opts),
		newServeCommand(opts),
	)

	return cmd
}

// loadConfig loads application configuration, letting flags override file
// values where the flag was set.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Templates != "" {
		cfg.Templates.Dir = opts.Templates
	}
	return cfg, nil
}

// loggerKey is a private context key used to store a logger in command
// contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a
// default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo, "text")
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo, "text")
}
