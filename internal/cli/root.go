// Package cli implements the partsource command-line interface.
//
// The main commands are:
//   - serve: run the HTTP sourcing API
//   - source: run one sourcing request from the terminal
//   - session: inspect or clear the cached marketplace session
//
// All commands support --verbose (-v) for debug-level logging and --config
// (-c) to select the configuration file. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const appName = "partsource"

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version, typically
// injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the partsource CLI and returns an error if any command
// fails.
//
// Logging defaults to info level on stderr; --verbose switches to debug.
// The logger is attached to the command context and accessible to all
// commands via loggerFromContext. Credentials come from the environment;
// a .env file in the working directory is loaded when present.
func Execute(ctx context.Context) error {
	var (
		verbose bool
		cfgPath string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "partsource sources auto parts across marketplace vendors",
		Long:         `partsource resolves a VIN and a part description against a parts marketplace, fans the search out across vendor accounts, and ranks the results against local shop inventory.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			_ = godotenv.Load()
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "partsource.toml", "path to the configuration file")

	root.AddCommand(newServeCmd(&cfgPath))
	root.AddCommand(newSourceCmd(&cfgPath))
	root.AddCommand(newSessionCmd(&cfgPath))

	return root.ExecuteContext(ctx)
}
