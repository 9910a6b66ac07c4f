package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTick_Valid(t *testing.T) {
	ts := time.Now()
	tk, err := NewTick("NIFTY", 101.5, ts)
	assert.NoError(t, err)
	assert.Equal(t, "NIFTY", tk.Symbol)
	assert.Equal(t, 101.5, tk.Price)
	assert.Equal(t, ts, tk.Time)
}

func TestNewTick_RejectsZeroAndNegative(t *testing.T) {
	for _, price := range []float64{0, -0.01, -100} {
		_, err := NewTick("NIFTY", price, time.Now())
		assert.ErrorIs(t, err, ErrInvalidPrice, "price %v", price)
	}
}

func TestTickStore_SetGet(t *testing.T) {
	t.Parallel()

	ts := NewTickStore()
	tk := Tick{Symbol: "NIFTY", Price: 22100.5, Time: time.Now()}

	ts.Set(tk)

	got, err := ts.Get("NIFTY")
	assert.NoError(t, err)
	assert.Equal(t, tk, got)
}

func TestTickStore_GetMissing(t *testing.T) {
	t.Parallel()

	ts := NewTickStore()

	got, err := ts.Get("NO_SUCH")
	assert.Error(t, err)
	assert.Equal(t, Tick{}, got)
}
