package market

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidPrice rejects quotes that can never be a traded price. A feed
// hiccup must not show up downstream as a zero price.
var ErrInvalidPrice = errors.New("market: invalid price")

// Tick is a single last-traded-price observation for one symbol.
type Tick struct {
	Symbol string
	Time   time.Time
	Price  float64
}

// NewTick validates a quote at the ingestion boundary. Zero and negative
// prices never reach the candle builder.
func NewTick(symbol string, price float64, ts time.Time) (Tick, error) {
	if price <= 0 {
		return Tick{}, fmt.Errorf("%w: %s %v", ErrInvalidPrice, symbol, price)
	}
	return Tick{Symbol: symbol, Time: ts, Price: price}, nil
}

// TickStore holds the latest tick per symbol.
type TickStore struct {
	mu    sync.RWMutex
	ticks map[string]Tick
}

func NewTickStore() *TickStore {
	return &TickStore{ticks: make(map[string]Tick)}
}

func (ts *TickStore) Set(t Tick) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.ticks[t.Symbol] = t
}

func (ts *TickStore) Get(symbol string) (Tick, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	t, ok := ts.ticks[symbol]
	if !ok {
		return Tick{}, errors.New("price not found")
	}
	return t, nil
}
