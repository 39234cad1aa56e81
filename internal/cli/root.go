// Package cli wires the docs command line: the server plus maintenance
// commands that operate on the same store.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/docs/internal/config"
	"github.com/MrSnakeDoc/docs/internal/logger"
	"github.com/MrSnakeDoc/docs/internal/version"
)

// env holds what every command needs. loadConfig is swappable for tests.
type env struct {
	loadConfig func() *config.Config
}

func (e *env) setup() (*config.Config, logger.Logger) {
	cfg := e.loadConfig()
	return cfg, logger.New(cfg.LogLevel, cfg.PrettyLog)
}

// NewRootCommand builds the docs command tree. Running it without a
// subcommand starts the server.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&env{loadConfig: config.Load})
}

func newRootCommand(e *env) *cobra.Command {
	serve := newServeCommand(e)

	root := &cobra.Command{
		Use:   "docs",
		Short: "Documentation site backend",
		Long: `docs serves documentation pages grouped into categories.

Configuration is read from DOCS_* environment variables. Without a
subcommand, the HTTP server is started.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	root.AddCommand(
		serve,
		newExportCommand(e),
		newImportCommand(e),
		newResetCommand(e),
	)
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
