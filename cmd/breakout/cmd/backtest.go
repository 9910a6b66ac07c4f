package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/breakout/backtest"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay historical candles through the strategy",
	Long: `Backtest replays a candle CSV (datetime,open,high,low,close[,volume])
through the breakout strategy and prints a trade summary.

Exits are modeled pessimistically: a bar that spans both the stop and
the target fills at the stop.

Example:
  breakout backtest -c data/nifty_5m.csv -f examples/configs/basic.yaml`,
	RunE: runBacktest,
}

var (
	btCandlesPath string
	btConfigPath  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btCandlesPath, "candles", "c", "", "path to candle CSV (required)")
	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	backtestCmd.MarkFlagRequired("candles")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(btConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	candles, err := backtest.LoadCandles(btCandlesPath, cfg.Interval())
	if err != nil {
		return fmt.Errorf("load candles: %w", err)
	}

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	res, err := backtest.NewRunner(cfg, j, log).Run(candles)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	fmt.Println(res)
	return nil
}
