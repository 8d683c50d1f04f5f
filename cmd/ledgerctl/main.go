package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-ledger/internal/app"
	"github.com/jwalitptl/clinic-ledger/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operations tooling for the clinic ledger.",
	Long: `ledgerctl applies database migrations, produces the patients financial
report and manages staff logins for the clinic ledger.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: search ., ./config, /app/config)")

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newUserCommand())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	app.NewLogger(cfg.Logging)
	return cfg, nil
}
