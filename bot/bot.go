// Package bot wires the feed, candle builder, strategy and ledger into a
// polling run loop.
package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/breakout/config"
	"github.com/rustyeddy/breakout/feed"
	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/ledger"
	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/strategies"
)

// Bot polls a price source and drives the pipeline one tick at a time:
// the ledger sees the raw tick first so exits fire intrabar, then the
// candle builder folds it in, and a sealed candle is handed to the
// strategy. Intents returned by the strategy become simulated fills.
type Bot struct {
	cfg     *config.Config
	src     feed.PriceSource
	ticks   *market.TickStore
	builder *market.CandleBuilder
	strat   *strategies.Breakout
	ledger  *ledger.Ledger
	log     *zap.Logger

	poll         time.Duration
	fetchTimeout time.Duration
	maxBackoff   time.Duration

	lastTime time.Time
	failures int
}

func New(cfg *config.Config, src feed.PriceSource, j journal.Journal, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		cfg:          cfg,
		src:          src,
		ticks:        market.NewTickStore(),
		builder:      market.NewCandleBuilder(cfg.Interval()),
		strat:        strategies.NewBreakout(cfg.Symbol, cfg.EMAPeriod, cfg.RewardRatio),
		ledger:       ledger.New(cfg.StartingCash, cfg.Quantity, cfg.Slippage, j),
		log:          log.Named("bot"),
		poll:         cfg.Poll(),
		fetchTimeout: cfg.Poll(),
		maxBackoff:   time.Minute,
	}
}

// Ledger exposes the paper ledger for reporting.
func (b *Bot) Ledger() *ledger.Ledger { return b.ledger }

// Strategy exposes the strategy for reporting.
func (b *Bot) Strategy() *strategies.Breakout { return b.strat }

// LastTick returns the latest accepted tick for the configured symbol,
// if any tick has been seen yet.
func (b *Bot) LastTick() (market.Tick, bool) {
	t, err := b.ticks.Get(b.cfg.Symbol)
	return t, err == nil
}

// Run polls the feed until ctx is cancelled. The first fetch happens
// immediately, then once per poll interval. Failed fetches back off
// exponentially and never stop the loop; pipeline errors do.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("starting",
		zap.String("symbol", b.cfg.Symbol),
		zap.Duration("interval", b.cfg.Interval()),
		zap.Duration("poll", b.poll),
		zap.Float64("cash", b.ledger.Cash()))

	var delay time.Duration // immediate first fetch
	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return nil
		case <-time.After(delay):
		}

		fetchCtx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
		tick, err := b.src.GetPrice(fetchCtx, b.cfg.Symbol)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				b.shutdown()
				return nil
			}
			b.failures++
			delay = b.backoff()
			b.log.Warn("price fetch failed",
				zap.Error(err),
				zap.Int("failures", b.failures),
				zap.Duration("retry_in", delay))
			continue
		}
		b.failures = 0
		delay = b.poll

		if err := b.Step(tick); err != nil {
			return err
		}
	}
}

// Step pushes one tick through the pipeline. Exported so replay drivers
// and tests can run the bot without the polling loop.
func (b *Bot) Step(t market.Tick) error {
	if t.Price <= 0 {
		return fmt.Errorf("%w: %s %v", market.ErrInvalidPrice, t.Symbol, t.Price)
	}
	if t.Time.Before(b.lastTime) {
		b.log.Debug("dropping out-of-order tick",
			zap.Time("tick", t.Time), zap.Time("last", b.lastTime))
		return nil
	}
	b.lastTime = t.Time
	b.ticks.Set(t)

	closed, err := b.ledger.OnTick(t)
	if closed != nil {
		b.strat.OnTradeClosed(closed.TradeID, closed.Reason)
		b.log.Info("position closed",
			zap.String("trade_id", closed.TradeID),
			zap.String("reason", closed.Reason),
			zap.Float64("exit", closed.Exit),
			zap.Float64("pnl", closed.RealizedPL),
			zap.Float64("cash", b.ledger.Cash()))
	}
	if err != nil {
		return fmt.Errorf("ledger tick: %w", err)
	}

	if c, ok := b.builder.OnTick(t); ok {
		return b.onCandle(c)
	}
	return nil
}

func (b *Bot) onCandle(c market.Candle) error {
	before := b.strat.State()
	intent := b.strat.OnCandle(c)

	ema, ready := b.strat.EMA()
	b.log.Info("candle sealed",
		zap.Time("start", c.Start),
		zap.Float64("open", c.Open),
		zap.Float64("high", c.High),
		zap.Float64("low", c.Low),
		zap.Float64("close", c.Close),
		zap.Float64("ema", ema),
		zap.Bool("ema_ready", ready))

	if after := b.strat.State(); after != before {
		b.log.Info("state transition",
			zap.String("from", before.String()),
			zap.String("to", after.String()))
	}

	if intent != nil {
		pos, err := b.ledger.OpenShort(intent)
		if err != nil {
			return fmt.Errorf("open short: %w", err)
		}
		b.log.Info("short opened",
			zap.String("trade_id", pos.TradeID),
			zap.Float64("entry", pos.Entry),
			zap.Float64("stop", pos.Stop),
			zap.Float64("target", pos.Target),
			zap.Float64("quantity", pos.Quantity))
	}

	if err := b.ledger.SnapshotEquity(c.End); err != nil {
		return fmt.Errorf("equity snapshot: %w", err)
	}
	return nil
}

func (b *Bot) backoff() time.Duration {
	d := b.poll
	for i := 0; i < b.failures && d < b.maxBackoff; i++ {
		d *= 2
	}
	if d > b.maxBackoff {
		d = b.maxBackoff
	}
	return d
}

// shutdown seals any partial candle for the log without consulting the
// strategy, then reports final account state. A partial candle is not a
// completed interval and must not move the EMA or trigger entries.
func (b *Bot) shutdown() {
	if c, ok := b.builder.Flush(); ok {
		b.log.Info("flushed partial candle",
			zap.Time("start", c.Start),
			zap.Float64("open", c.Open),
			zap.Float64("close", c.Close))
	}
	b.log.Info("stopped",
		zap.Float64("cash", b.ledger.Cash()),
		zap.Float64("equity", b.ledger.MarkToMarket()),
		zap.Int("trades", len(b.ledger.Trades())),
		zap.String("state", b.strat.State().String()))
}
