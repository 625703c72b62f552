package indicator

import (
	"testing"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
)

func TestSMA(t *testing.T) {
	series := closeSeries(t, sampleCloses...)

	for period := 1; period <= 10; period++ {
		sma, err := SMA(series, period)
		require.NoError(t, err)
		require.Equal(t, series.Len(), sma.Len())
		assert.Equal(t, series.Times(), sma.Time)

		for i := range sampleCloses {
			value, ok := sma.At(i)
			if i < period-1 {
				assert.False(t, ok, "period %d index %d", period, i)
				continue
			}
			require.True(t, ok, "period %d index %d", period, i)

			var sum float64
			for _, c := range sampleCloses[i-period+1 : i+1] {
				sum += c
			}
			assert.InDelta(t, sum/float64(period), value, 1e-12)
		}
	}
}

func TestSMA_MatchesTalib(t *testing.T) {
	series := closeSeries(t, sampleCloses...)
	sma, err := SMA(series, 9)
	require.NoError(t, err)

	expected := talib.Sma(sampleCloses, 9)
	for i := 8; i < len(sampleCloses); i++ {
		value, ok := sma.At(i)
		require.True(t, ok)
		assert.InDelta(t, expected[i], value, 1e-9)
	}
}

func TestSMA_Errors(t *testing.T) {
	series := closeSeries(t, 10, 11, 12)

	_, err := SMA(series, 0)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = SMA(series, 4)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestEMA(t *testing.T) {
	// α = 2/(3+1) = 0.5
	series := closeSeries(t, 10, 11, 9, 12, 8)
	ema, err := EMA(series, 3)
	require.NoError(t, err)

	expected := []float64{10, 10.5, 9.75, 10.875, 9.4375}
	for i, want := range expected {
		value, ok := ema.At(i)
		require.True(t, ok)
		assert.InDelta(t, want, value, 1e-12)
	}

	t.Run("recurrence", func(t *testing.T) {
		series := closeSeries(t, sampleCloses...)
		span := 12
		alpha := 2 / (float64(span) + 1)
		ema, err := EMA(series, span)
		require.NoError(t, err)

		first, _ := ema.At(0)
		assert.Equal(t, sampleCloses[0], first)
		for i := 1; i < len(sampleCloses); i++ {
			prev, _ := ema.At(i - 1)
			value, ok := ema.At(i)
			require.True(t, ok)
			assert.InDelta(t, sampleCloses[i]*alpha+prev*(1-alpha), value, 1e-12)
		}
	})

	t.Run("span one follows close", func(t *testing.T) {
		ema, err := EMA(series, 1)
		require.NoError(t, err)
		values, err := ema.Floats()
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 11, 9, 12, 8}, values.Values())
	})

	t.Run("invalid span", func(t *testing.T) {
		_, err := EMA(series, 0)
		assert.ErrorIs(t, err, model.ErrInvalidParameter)
	})
}

func TestEMA_MissingClose(t *testing.T) {
	candles := []model.Candle{
		{Time: day(0), Close: 10, High: 10, Low: 10},
		{Time: day(1), Close: 0, High: 10, Low: 10},
	}
	series, err := model.NewPriceSeries("TEST", candles)
	require.NoError(t, err)

	_, err = EMA(series, 3)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestEMAOf(t *testing.T) {
	input := model.NewDerivedSeries("x",
		[]time.Time{day(0), day(1), day(2), day(3)},
		[]model.Value{model.Undefined(), model.Defined(4), model.Defined(8), model.Defined(2)},
	)

	ema, err := EMAOf(input, 3)
	require.NoError(t, err)

	_, ok := ema.At(0)
	assert.False(t, ok)
	assert.Equal(t, []model.Value{model.Undefined(), model.Defined(4), model.Defined(6), model.Defined(4)}, ema.Values)

	sma, err := SMAOf(input, 2)
	require.NoError(t, err)
	assert.Equal(t, []model.Value{model.Undefined(), model.Undefined(), model.Defined(6), model.Defined(5)}, sma.Values)

	_, err = EMAOf(input, -1)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
	_, err = SMAOf(input, 0)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}
