package indicators

import (
	"fmt"

	"github.com/rustyeddy/breakout/market"
)

// EMA is a streaming Exponential Moving Average over candle closes.
//
// The value is undefined until `period` candles have been observed. The
// first value is seeded with the simple average of the first `period`
// closes; after that the standard recurrence applies with
// k = 2/(period+1).
type EMA struct {
	period     int
	multiplier float64

	ema       float64
	count     int
	warmupSum float64
}

func NewEMA(period int) *EMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *EMA) Warmup() int {
	return e.period
}

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *EMA) Update(c market.Candle) {
	if e.count < e.period {
		e.warmupSum += c.Close
		e.count++
		if e.count == e.period {
			// Seed with the SMA of the first `period` closes.
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = c.Close*e.multiplier + e.ema*(1.0-e.multiplier)
}

func (e *EMA) Ready() bool {
	return e.count >= e.period
}

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
