package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/breakout/config"
	"github.com/rustyeddy/breakout/journal"
)

var rootCmd = &cobra.Command{
	Use:   "breakout",
	Short: "A short-only EMA breakout paper-trading bot",
	Long: `Breakout polls a price feed, aggregates ticks into fixed-interval
candles, and paper-trades a short-only EMA breakout setup.

It provides tools for:
  - Running the live polling loop against a price feed
  - Backtesting the strategy against historical candle CSVs
  - Journaling trades and equity curves to CSV or SQLite
  - Generating and validating configuration files`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file is optional; flags and config files win.
		_ = godotenv.Load()
	},
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig resolves the config path from the flag, then the
// BREAKOUT_CONFIG environment variable, then built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("BREAKOUT_CONFIG")
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(path)
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
}
