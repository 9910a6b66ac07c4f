// Package feed supplies timestamped prices for the pipeline. A source is
// either a live broker connector or a synthetic generator; the pipeline
// never knows which.
package feed

import (
	"context"
	"errors"

	"github.com/rustyeddy/breakout/market"
)

// ErrUnavailable reports a fetch that produced no usable quote (network,
// auth, rate limit, malformed response). Callers retry with backoff; a
// failed fetch is never a zero price.
var ErrUnavailable = errors.New("feed: unavailable")

// PriceSource yields the latest traded price for a symbol.
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (market.Tick, error)
}
