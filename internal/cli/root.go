package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jekabs-s/urlookup/internal/config"
	"github.com/jekabs-s/urlookup/internal/logging"
	"github.com/jekabs-s/urlookup/pkg/version"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the urlookup CLI.
// It loads configuration, wires up logging and tracing, and adds the
// lookup, serve and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "urlookup",
		Short:         "Look up entity names in the Latvian Enterprise Register",
		Long:          "urlookup: Enrich a spreadsheet of entity names with records from the UR open-data registry",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}} (commit %s, built %s)\n",
		version.GetGitCommit(), version.GetBuildDate()))

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $URLOOKUP_HOME/config.yaml)")
	cmd.AddCommand(NewLookupCmd(), NewServeCmd(), newConfigCmd())

	// Post-run hooks are skipped when RunE fails, so the log file is released
	// by wrapping every RunE instead.
	closeLogs := func() error {
		err := cleanupLogging(logResult)
		logResult = nil
		return err
	}
	for _, c := range walkCommands(cmd) {
		if c.RunE != nil {
			c.RunE = withCleanup(c.RunE, closeLogs)
		}
	}

	return cmd
}

// withCleanup runs cleanup after run regardless of its result. A cleanup
// error is returned only when run succeeded.
func withCleanup(
	run func(*cobra.Command, []string) error,
	cleanup func() error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := cleanup(); err == nil {
				err = cerr
			}
		}()
		return run(cmd, args)
	}
}

func walkCommands(root *cobra.Command) []*cobra.Command {
	cmds := []*cobra.Command{root}
	for _, c := range root.Commands() {
		cmds = append(cmds, walkCommands(c)...)
	}
	return cmds
}

const rootCmdExample = `  # Look up every name in input.xlsx and write entity_ur_data.xlsx
  urlookup lookup --input input.xlsx

  # Use 4 workers and a shorter retry backoff
  urlookup lookup --input input.xlsx --output out.xlsx --workers 4 --backoff 2s

  # Serve the upload endpoint on :8080
  urlookup serve

  # Initialize configuration
  urlookup config init`

// loadConfig installs the effective configuration as the global config.
// An explicit --config file must exist and be valid.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		config.InitGlobalConfig()
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd())
	return cmd
}
