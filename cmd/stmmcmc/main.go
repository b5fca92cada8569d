// Command stmmcmc runs the adaptive Metropolis-Hastings sampler for the
// landscape transition model: a root command carrying persistent flags
// (--config, --log-level) and a single "run" subcommand that does the
// actual work.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quiccfor/stmmcmc/pkg/config"
)

var (
	cfgFile   string
	verbosity string
	globalCfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stmmcmc",
	Short: "Adaptive Metropolis-Hastings sampler for state-transition landscape models",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if verbosity != "" {
			cfg.Logging.Level = verbosity
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		globalCfg = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to stmmcmc.yaml (default: stmmcmc.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&verbosity, "log-level", "", "override the configured log level (debug|info|warn|error)")
	rootCmd.AddCommand(runCmd)
}
