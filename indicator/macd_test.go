package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
)

func TestMACD(t *testing.T) {
	series := closeSeries(t, sampleCloses...)
	result, err := MACD(series, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	require.NoError(t, err)

	fast, err := EMA(series, DefaultMACDFast)
	require.NoError(t, err)
	slow, err := EMA(series, DefaultMACDSlow)
	require.NoError(t, err)

	for i := 0; i < series.Len(); i++ {
		macd, ok := result.MACD.At(i)
		require.True(t, ok)
		signal, ok := result.Signal.At(i)
		require.True(t, ok)
		hist, ok := result.Histogram.At(i)
		require.True(t, ok)

		f, _ := fast.At(i)
		s, _ := slow.At(i)
		assert.Equal(t, f-s, macd)
		assert.Equal(t, macd-signal, hist)
	}

	// both EMAs start at close[0]
	first, _ := result.MACD.At(0)
	assert.Zero(t, first)
	firstSignal, _ := result.Signal.At(0)
	assert.Zero(t, firstSignal)

	signal, err := EMAOf(result.MACD, DefaultMACDSignal)
	require.NoError(t, err)
	assert.Equal(t, signal.Values, result.Signal.Values)
}

func TestMACD_Errors(t *testing.T) {
	series := closeSeries(t, sampleCloses...)

	_, err := MACD(series, 26, 12, 9)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = MACD(series, 12, 12, 9)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = MACD(series, 12, 26, 0)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}
