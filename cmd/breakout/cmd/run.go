package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/breakout/bot"
	"github.com/rustyeddy/breakout/feed"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the polling paper-trading loop",
	Long: `Poll the price feed and paper-trade the breakout setup until
interrupted. Ctrl-C stops the loop cleanly and prints a summary.

Example:
  breakout run -f examples/configs/basic.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	seed := cfg.Feed.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	src := feed.NewRandomWalk(cfg.Feed.StartPrice, cfg.Feed.Volatility, seed)

	b := bot.New(cfg, src, j, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	fmt.Printf("\nStopped.\n")
	if last, ok := b.LastTick(); ok {
		fmt.Printf("  Last:   %.2f @ %s\n", last.Price, last.Time.Format(time.RFC3339))
	}
	fmt.Printf("  Cash:   %.2f\n", b.Ledger().Cash())
	fmt.Printf("  Equity: %.2f\n", b.Ledger().MarkToMarket())
	fmt.Printf("  Trades: %d\n", len(b.Ledger().Trades()))
	return nil
}
