package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/breakout/market"
)

// RandomWalk generates a gaussian random-walk price series per symbol.
// Used for offline runs and tests; prices are floored just above zero so
// the walk can never emit an invalid quote.
type RandomWalk struct {
	mu         sync.Mutex
	rng        *rand.Rand
	prices     map[string]float64
	start      float64
	volatility float64 // percent step stddev per fetch
	now        func() time.Time
}

func NewRandomWalk(startPrice, volatility float64, seed int64) *RandomWalk {
	if startPrice <= 0 {
		startPrice = 100.0
	}
	if volatility <= 0 {
		volatility = 0.2
	}
	return &RandomWalk{
		rng:        rand.New(rand.NewSource(seed)),
		prices:     make(map[string]float64),
		start:      startPrice,
		volatility: volatility,
		now:        time.Now,
	}
}

func (w *RandomWalk) GetPrice(ctx context.Context, symbol string) (market.Tick, error) {
	if err := ctx.Err(); err != nil {
		return market.Tick{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.prices[symbol]
	if !ok {
		p = w.start
	}

	step := w.rng.NormFloat64() * w.volatility
	p = p * (1 + step/100.0)
	if p < 0.01 {
		p = 0.01
	}
	w.prices[symbol] = p

	return market.NewTick(symbol, p, w.now())
}
