package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedSeries(t *testing.T) {
	series := NewDerivedSeries("SMA(2)",
		[]time.Time{day(0), day(1), day(2)},
		[]Value{Undefined(), Defined(0), Defined(10.5)},
	)

	assert.Equal(t, 3, series.Len())
	assert.Equal(t, 1, series.FirstDefined())

	v, ok := series.At(0)
	assert.False(t, ok)
	assert.Zero(t, v)

	// a computed zero is not undefined
	v, ok = series.At(1)
	assert.True(t, ok)
	assert.Zero(t, v)

	last, ok := series.Last()
	assert.True(t, ok)
	assert.Equal(t, 10.5, last)

	assert.Equal(t, []Point{{Time: day(1), Value: 0}, {Time: day(2), Value: 10.5}}, series.Defined())

	_, err := series.Floats()
	assert.ErrorIs(t, err, ErrInvalidInput)

	full := NewDerivedSeries("EMA(2)", []time.Time{day(0)}, []Value{Defined(3)})
	values, err := full.Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, values.Values())
}

func TestDerivedSeries_Empty(t *testing.T) {
	series := NewDerivedSeries("empty", nil, nil)
	assert.Equal(t, -1, series.FirstDefined())
	_, ok := series.Last()
	assert.False(t, ok)
}

func TestNewDerivedSeries_Misaligned(t *testing.T) {
	assert.Panics(t, func() {
		NewDerivedSeries("bad", []time.Time{day(0)}, nil)
	})
}

func TestSeries(t *testing.T) {
	s := Series[float64]{1, 2, 3, 4}
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 4.0, s.Last(0))
	assert.Equal(t, 3.0, s.Last(1))
	assert.Equal(t, []float64{3, 4}, s.LastValues(2))
	assert.Equal(t, []float64{1, 2, 3, 4}, s.LastValues(10))
	assert.Equal(t, []float64{2, 3}, s.Window(2, 2))
	assert.Equal(t, int64(3), NumDecPlaces(1.125))
	assert.Equal(t, int64(0), NumDecPlaces(100))
}

func TestCandle_ToSlice(t *testing.T) {
	c := Candle{Time: day(0), Open: 1.5, Close: 2, Low: 1, High: 2.25, Volume: 42}
	assert.Equal(t, []string{"2024-01-01", "1.50", "2.00", "1.00", "2.25", "42"}, c.ToSlice(2))

	rounded := Candle{Time: day(0), Open: 2.675, Close: 2.675, Low: 2.675, High: 2.675, Volume: 1}
	assert.Equal(t, "2.68", rounded.ToSlice(2)[1])

	assert.True(t, Candle{}.Empty())
	assert.False(t, c.Empty())
}

func TestSignalEvent_String(t *testing.T) {
	event := SignalEvent{Time: day(3), Price: 12, Side: SideTypeSell, Index: 3}
	assert.Equal(t, "SELL signal on 2024-01-04 at 12.00", event.String())
}
