// Package cli implements the ghgledger command-line interface: the HTTP
// server, one-shot calculations, and record inspection against the
// configured store.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ghgledger/ghgledger/internal/config"
	"github.com/ghgledger/ghgledger/internal/logging"
)

// app carries state shared by subcommands after PersistentPreRunE.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	closeLogs func()
}

// NewRootCmd creates the root Cobra command for the ghgledger CLI.
// It wires configuration loading and logging before any subcommand runs.
func NewRootCmd(ver string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:     "ghgledger",
		Short:   "GHG emission calculation engine",
		Long:    "ghgledger: calculate and track scope 1/2/3 greenhouse gas emissions for sustainability reports",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is optional; absence is not an error.
			_ = godotenv.Load()

			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			a.cfg = cfg

			loggingCfg := cfg.Logging
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				loggingCfg.Level = "debug"
				loggingCfg.Format = "console"
			}
			logger, closer, err := config.InitLogger(loggingCfg)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			a.logger = logging.ComponentLogger(logger, "cli")
			a.closeLogs = closer

			cmd.SetContext(a.logger.WithContext(cmd.Context()))
			a.logger.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.closeLogs != nil {
				a.closeLogs()
			}
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (default ~/.ghgledger/config.yaml)")
	cmd.AddCommand(newServeCmd(a), newCalcCmd(a), newRecordsCmd(a), newReportsCmd(a))

	return cmd
}

const rootCmdExample = `  # Start the HTTP API server
  ghgledger serve --listen :8085

  # One-shot scope 1 calculation
  ghgledger calc --scope scope1 --fuel-type diesel --fuel-quantity 120

  # One-shot scope 2 calculation with a provider default renewable share
  ghgledger calc --scope scope2 --energy-type electricity --energy-quantity 500 --energy-provider iren

  # List a report's calculation records
  ghgledger records list --report 6f1b2c3d-...

  # Remove a record
  ghgledger records remove --report 6f1b2c3d-... --record 01J...`
