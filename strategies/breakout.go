package strategies

import (
	"fmt"

	"github.com/rustyeddy/breakout/indicators"
	"github.com/rustyeddy/breakout/market"
)

// Breakout is a short-only EMA breakout strategy.
//
// A candle whose low is strictly above the EMA (the bar trades above the
// average without testing it) becomes the signal candle and arms the
// setup. A later candle breaking below the signal candle's low triggers a
// short entry at that low, stop at the signal candle's high, target at
// RR times the stop distance below entry. A candle that neither triggers
// nor re-qualifies invalidates the setup.
//
// While armed, a fresh qualifying candle replaces the stored signal
// candle: the newest setup wins.
type Breakout struct {
	Symbol string
	RR     float64

	ema    *indicators.EMA
	state  State
	signal *market.Candle
}

func NewBreakout(symbol string, emaPeriod int, rr float64) *Breakout {
	if rr <= 0 {
		rr = 3.0
	}
	return &Breakout{
		Symbol: symbol,
		RR:     rr,
		ema:    indicators.NewEMA(emaPeriod),
	}
}

func (s *Breakout) Name() string {
	return fmt.Sprintf("%s-short-breakout", s.ema.Name())
}

func (s *Breakout) State() State { return s.state }

// EMA returns the current average and whether it is warmed up. Read-only;
// only the strategy's own candle updates move it.
func (s *Breakout) EMA() (value float64, ready bool) {
	return s.ema.Value(), s.ema.Ready()
}

func (s *Breakout) Reset() {
	s.ema.Reset()
	s.state = Idle
	s.signal = nil
}

// OnCandle consumes one completed candle and returns a short trade intent
// on a breakout trigger, nil otherwise. Candles before EMA warm-up only
// feed the average.
func (s *Breakout) OnCandle(c market.Candle) *Intent {
	s.ema.Update(c)
	if !s.ema.Ready() {
		return nil
	}
	ema := s.ema.Value()

	switch s.state {
	case InTrade:
		// Exits are evaluated on raw ticks by the ledger, not here.
		return nil

	case Idle:
		if c.Low > ema {
			s.arm(c)
		}
		return nil

	case Armed:
		if c.Low < s.signal.Low {
			entry := s.signal.Low
			stop := s.signal.High
			intent := &Intent{
				Symbol: s.Symbol,
				Entry:  entry,
				Stop:   stop,
				Target: entry - s.RR*(stop-entry),
				Time:   c.End,
			}
			s.signal = nil
			s.state = InTrade
			return intent
		}
		if c.Low > ema {
			// Newest qualifying candle replaces the setup.
			s.arm(c)
			return nil
		}
		// Touched or crossed the EMA: setup invalidated.
		s.signal = nil
		s.state = Idle
		return nil
	}
	return nil
}

// OnTradeClosed implements TradeClosedListener. The ledger reports the
// position closed; the strategy may arm a new setup on following candles.
func (s *Breakout) OnTradeClosed(tradeID string, reason string) {
	if s.state == InTrade {
		s.state = Idle
	}
}

func (s *Breakout) arm(c market.Candle) {
	sig := c
	s.signal = &sig
	s.state = Armed
}
