package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
)

func TestFibonacci(t *testing.T) {
	series, err := model.NewPriceSeries("TEST", []model.Candle{
		{Time: day(0), Open: 110, Close: 120, High: 130, Low: 100},
		{Time: day(1), Open: 120, Close: 140, High: 150, Low: 115},
		{Time: day(2), Open: 140, Close: 125, High: 141, Low: 120},
	})
	require.NoError(t, err)

	levels, err := Fibonacci(series)
	require.NoError(t, err)
	assert.Equal(t, 150.0, levels.High)
	assert.Equal(t, 100.0, levels.Low)
	assert.False(t, levels.Degenerate)

	expected := map[string]float64{
		"0%":    150,
		"23.6%": 138.2,
		"38.2%": 130.9,
		"50%":   125.0,
		"61.8%": 119.1,
		"100%":  100.0,
	}
	for label, want := range expected {
		price, ok := levels.Level(label)
		require.True(t, ok, label)
		assert.InDelta(t, want, price, 0.05, label)
	}

	price, _ := levels.Level("100%")
	assert.Equal(t, levels.Low, price)

	labels := make([]string, 0, len(levels.Levels))
	for _, level := range levels.Levels {
		labels = append(labels, level.Label)
	}
	assert.Equal(t, []string{"0%", "23.6%", "38.2%", "50%", "61.8%", "100%"}, labels)

	_, ok := levels.Level("78.6%")
	assert.False(t, ok)
}

func TestFibonacci_InsufficientData(t *testing.T) {
	_, err := Fibonacci(closeSeries(t, 100))
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestFibonacci_Degenerate(t *testing.T) {
	levels, err := Fibonacci(closeSeries(t, 100, 100, 100))
	require.NoError(t, err)
	assert.True(t, levels.Degenerate)
	for _, level := range levels.Levels {
		assert.Equal(t, 100.0, level.Price)
	}
}
