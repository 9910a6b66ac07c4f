// Package backtest replays historical candles through the strategy and
// ledger to measure how the setup would have traded.
package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/breakout/config"
	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/ledger"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/strategies"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// LoadCandles reads candles from a CSV file with columns
// datetime,open,high,low,close and an optional volume column. A header
// row is skipped when present. Each candle spans one interval from its
// timestamp.
func LoadCandles(path string, interval time.Duration) ([]market.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candle file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var candles []market.Candle
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read candle file: %w", err)
		}
		line++

		if len(rec) < 5 {
			return nil, fmt.Errorf("row %d: want at least 5 columns, got %d", line, len(rec))
		}
		if line == 1 {
			if _, err := strconv.ParseFloat(rec[1], 64); err != nil {
				continue // header row
			}
		}

		c, err := parseCandle(rec, interval)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles in %s", path)
	}
	return candles, nil
}

func parseCandle(rec []string, interval time.Duration) (market.Candle, error) {
	var start time.Time
	var err error
	for _, layout := range timeLayouts {
		if start, err = time.Parse(layout, rec[0]); err == nil {
			break
		}
	}
	if err != nil {
		return market.Candle{}, fmt.Errorf("bad timestamp %q", rec[0])
	}

	var v [4]float64
	for i := 0; i < 4; i++ {
		if v[i], err = strconv.ParseFloat(rec[i+1], 64); err != nil {
			return market.Candle{}, fmt.Errorf("bad price %q", rec[i+1])
		}
		if v[i] <= 0 {
			return market.Candle{}, fmt.Errorf("%w: %v", market.ErrInvalidPrice, v[i])
		}
	}

	c := market.Candle{
		Open:  v[0],
		High:  v[1],
		Low:   v[2],
		Close: v[3],
		Start: start,
		End:   start.Add(interval),
	}
	if c.High < c.Open || c.High < c.Close || c.Low > c.Open || c.Low > c.Close {
		return market.Candle{}, fmt.Errorf("inconsistent OHLC %v", v)
	}
	return c, nil
}

// Results summarizes one backtest run.
type Results struct {
	Symbol       string
	Candles      int
	Trades       int
	Wins         int
	Losses       int
	NetPL        float64
	StartingCash float64
	FinalEquity  float64
}

// WinRate is the percentage of closed trades that made money.
func (r Results) WinRate() float64 {
	if r.Trades == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Trades) * 100
}

func (r Results) String() string {
	return fmt.Sprintf(
		"symbol:       %s\n"+
			"candles:      %d\n"+
			"trades:       %d (wins %d, losses %d, win rate %.1f%%)\n"+
			"net P/L:      %+.2f\n"+
			"final equity: %.2f (from %.2f)",
		r.Symbol, r.Candles, r.Trades, r.Wins, r.Losses, r.WinRate(),
		r.NetPL, r.FinalEquity, r.StartingCash)
}

// Runner replays candles through a fresh strategy and ledger.
type Runner struct {
	cfg    *config.Config
	strat  *strategies.Breakout
	ledger *ledger.Ledger
	log    *zap.Logger
}

func NewRunner(cfg *config.Config, j journal.Journal, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		strat:  strategies.NewBreakout(cfg.Symbol, cfg.EMAPeriod, cfg.RewardRatio),
		ledger: ledger.New(cfg.StartingCash, cfg.Quantity, cfg.Slippage, j),
		log:    log.Named("backtest"),
	}
}

// Run replays the candles in order. Exits are evaluated before the
// strategy sees each candle, probing the high, then the low, then the
// close, so a bar spanning both levels fills at the stop and equity
// marks at the close. Entries fill on the close of the triggering
// candle.
func (r *Runner) Run(candles []market.Candle) (Results, error) {
	res := Results{
		Symbol:       r.cfg.Symbol,
		Candles:      len(candles),
		StartingCash: r.cfg.StartingCash,
	}

	for _, c := range candles {
		for _, probe := range []struct {
			price float64
			at    time.Time
		}{{c.High, c.Start}, {c.Low, c.End}, {c.Close, c.End}} {
			closed, err := r.ledger.OnTick(market.Tick{
				Symbol: r.cfg.Symbol,
				Time:   probe.at,
				Price:  probe.price,
			})
			if closed != nil {
				r.strat.OnTradeClosed(closed.TradeID, closed.Reason)
				r.log.Debug("position closed",
					zap.String("reason", closed.Reason),
					zap.Float64("pnl", closed.RealizedPL))
			}
			if err != nil {
				return res, fmt.Errorf("ledger tick: %w", err)
			}
		}

		if intent := r.strat.OnCandle(c); intent != nil {
			pos, err := r.ledger.OpenShort(intent)
			if err != nil {
				return res, fmt.Errorf("open short: %w", err)
			}
			r.log.Debug("short opened",
				zap.Float64("entry", pos.Entry),
				zap.Float64("stop", pos.Stop),
				zap.Float64("target", pos.Target))
		}

		if err := r.ledger.SnapshotEquity(c.End); err != nil {
			return res, fmt.Errorf("equity snapshot: %w", err)
		}
	}

	for _, t := range r.ledger.Trades() {
		res.Trades++
		if t.RealizedPL >= 0 {
			res.Wins++
		} else {
			res.Losses++
		}
		res.NetPL += t.RealizedPL
	}
	res.FinalEquity = r.ledger.MarkToMarket()
	return res, nil
}

// Ledger exposes the replay ledger for inspection after a run.
func (r *Runner) Ledger() *ledger.Ledger { return r.ledger }
