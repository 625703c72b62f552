package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
)

func TestBollingerBands_Constant(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	series := closeSeries(t, closes...)

	for _, period := range []int{2, 5, 20} {
		bands, err := BollingerBands(series, period, DefaultBollingerK)
		require.NoError(t, err)

		for i := range closes {
			std, ok := bands.StdDev.At(i)
			if i < period-1 {
				assert.False(t, ok)
				_, ok = bands.Upper.At(i)
				assert.False(t, ok)
				continue
			}
			require.True(t, ok)
			assert.Equal(t, 0.0, std)

			upper, _ := bands.Upper.At(i)
			lower, _ := bands.Lower.At(i)
			middle, _ := bands.Middle.At(i)
			assert.Equal(t, 100.0, upper)
			assert.Equal(t, 100.0, lower)
			assert.Equal(t, 100.0, middle)
		}
	}
}

func TestBollingerBands(t *testing.T) {
	series := closeSeries(t, 1, 2, 3, 4)
	bands, err := BollingerBands(series, 2, 2)
	require.NoError(t, err)

	// sample standard deviation of two consecutive integers
	std := math.Sqrt(0.5)
	for i := 1; i < 4; i++ {
		s, ok := bands.StdDev.At(i)
		require.True(t, ok)
		assert.InDelta(t, std, s, 1e-12)

		middle, _ := bands.Middle.At(i)
		upper, _ := bands.Upper.At(i)
		lower, _ := bands.Lower.At(i)
		assert.InDelta(t, float64(i)+0.5, middle, 1e-12)
		assert.InDelta(t, middle+2*std, upper, 1e-12)
		assert.InDelta(t, middle-2*std, lower, 1e-12)
	}
}

func TestBollingerBands_Errors(t *testing.T) {
	series := closeSeries(t, 1, 2, 3, 4)

	_, err := BollingerBands(series, 1, 2)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = BollingerBands(series, 2, 0)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = BollingerBands(series, 2, math.NaN())
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = BollingerBands(series, 5, 2)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}
