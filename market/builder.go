package market

import "time"

// CandleBuilder aggregates an ordered tick stream into fixed-interval OHLC
// candles aligned to clock multiples of the interval.
//
// Exactly one candle is ever in flight. A tick whose bucket is earlier than
// the open candle belongs to an already-sealed interval and is dropped;
// sealed candles are never mutated.
type CandleBuilder struct {
	interval time.Duration
	current  *Candle
}

func NewCandleBuilder(interval time.Duration) *CandleBuilder {
	if interval <= 0 {
		panic("candle interval must be > 0")
	}
	return &CandleBuilder{interval: interval}
}

func (b *CandleBuilder) Interval() time.Duration { return b.interval }

// OnTick folds one tick into the in-flight candle. When the tick opens a
// later bucket, the previous candle is sealed and returned with ok=true
// and a new candle is seeded from this tick.
func (b *CandleBuilder) OnTick(t Tick) (sealed Candle, ok bool) {
	start := t.Time.Truncate(b.interval)

	if b.current == nil {
		b.current = b.open(start, t.Price)
		return Candle{}, false
	}

	switch {
	case start.Equal(b.current.Start):
		if t.Price > b.current.High {
			b.current.High = t.Price
		}
		if t.Price < b.current.Low {
			b.current.Low = t.Price
		}
		b.current.Close = t.Price
		return Candle{}, false

	case start.After(b.current.Start):
		done := *b.current
		b.current = b.open(start, t.Price)
		return done, true

	default:
		// Late data for a sealed bucket: drop.
		return Candle{}, false
	}
}

// Flush force-seals and returns the in-flight candle, if any.
// Used at shutdown and in tests.
func (b *CandleBuilder) Flush() (Candle, bool) {
	if b.current == nil {
		return Candle{}, false
	}
	done := *b.current
	b.current = nil
	return done, true
}

func (b *CandleBuilder) open(start time.Time, price float64) *Candle {
	return &Candle{
		Open:  price,
		High:  price,
		Low:   price,
		Close: price,
		Start: start,
		End:   start.Add(b.interval),
	}
}
