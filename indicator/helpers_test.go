package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
)

func day(i int) time.Time {
	return time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func closeSeries(t *testing.T, closes ...float64) *model.PriceSeries {
	t.Helper()
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{Time: day(i), Open: c, Close: c, High: c, Low: c}
	}
	series, err := model.NewPriceSeries("TEST", candles)
	require.NoError(t, err)
	return series
}

func rangeCloses(from, step float64, size int) []float64 {
	closes := make([]float64, size)
	for i := range closes {
		closes[i] = from + step*float64(i)
	}
	return closes
}

var sampleCloses = []float64{
	44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
	45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64,
	46.21, 46.25, 45.71, 46.45, 45.78, 45.35, 44.03, 44.18, 44.22, 44.57,
	43.42, 42.66, 43.13,
}
