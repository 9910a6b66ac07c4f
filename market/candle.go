package market

import "time"

// Candle summarizes price activity over one fixed interval.
// End is always Start plus the builder interval.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64

	Start time.Time
	End   time.Time
}
