package main

import (
	"os"

	"github.com/stackpact/stackpact/internal/cli"
	"github.com/stackpact/stackpact/internal/logging"
)

// main is the entry point for the stackpact CLI binary.
func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo, "text")
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(cli.ExitCode(err))
	}
}
