package signal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
)

// undefined marks a position without value in the test fixtures
var undefined = math.NaN()

func day(i int) time.Time {
	return time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func prices(t *testing.T, closes ...float64) *model.PriceSeries {
	t.Helper()
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{Time: day(i), Open: c, Close: c, High: c, Low: c}
	}
	series, err := model.NewPriceSeries("TEST", candles)
	require.NoError(t, err)
	return series
}

func derived(name string, values ...float64) *model.DerivedSeries {
	times := make([]time.Time, len(values))
	result := make([]model.Value, len(values))
	for i, v := range values {
		times[i] = day(i)
		if !math.IsNaN(v) {
			result[i] = model.Defined(v)
		}
	}
	return model.NewDerivedSeries(name, times, result)
}

func sides(events []model.SignalEvent) []model.SideType {
	result := make([]model.SideType, len(events))
	for i, e := range events {
		result[i] = e.Side
	}
	return result
}

func indexes(events []model.SignalEvent) []int {
	result := make([]int, len(events))
	for i, e := range events {
		result[i] = e.Index
	}
	return result
}

func TestCrossover_SMAScenario(t *testing.T) {
	series := prices(t, 10, 11, 9, 12, 8)

	short, err := indicator.SMA(series, 2)
	require.NoError(t, err)
	long, err := indicator.SMA(series, 3)
	require.NoError(t, err)

	// SMA(2) - SMA(3): undefined, undefined, 0, -1/6, +1/3
	events, err := Crossover(series, short, long, WithSource("sma-cross"))
	require.NoError(t, err)

	assert.Equal(t, []model.SignalEvent{
		{Time: day(3), Price: 12, Side: model.SideTypeSell, Index: 3, Source: "sma-cross"},
		{Time: day(4), Price: 8, Side: model.SideTypeBuy, Index: 4, Source: "sma-cross"},
	}, events)
}

func TestCrossover_Transitions(t *testing.T) {
	zero := derived("zero", 0, 0, 0, 0, 0)
	tt := []struct {
		name    string
		diff    []float64
		sides   []model.SideType
		indexes []int
	}{
		{"cross up", []float64{-1, 1, 2, 3, 4}, []model.SideType{model.SideTypeBuy}, []int{1}},
		{"cross down", []float64{1, 2, -1, -2, -3}, []model.SideType{model.SideTypeSell}, []int{2}},
		{"zero defers buy", []float64{-1, 0, 1, 1, 1}, []model.SideType{model.SideTypeBuy}, []int{2}},
		{"zero defers sell", []float64{1, 0, 0, -1, -1}, []model.SideType{model.SideTypeSell}, []int{3}},
		{"touch and bounce up", []float64{1, 0, 1, 1, 1}, []model.SideType{model.SideTypeBuy}, []int{2}},
		{"touch and bounce down", []float64{-1, 0, -1, -1, -1}, []model.SideType{model.SideTypeSell}, []int{2}},
		{"zero alone", []float64{0, 0, 0, 0, 0}, []model.SideType{}, []int{}},
		{"into zero", []float64{1, 1, 0, 0, 0}, []model.SideType{}, []int{}},
		{"starts at zero", []float64{0, 1, -1, 1, -1},
			[]model.SideType{model.SideTypeBuy, model.SideTypeSell, model.SideTypeBuy, model.SideTypeSell},
			[]int{1, 2, 3, 4}},
		{"undefined resets", []float64{-1, undefined, 1, -1, -1}, []model.SideType{model.SideTypeSell}, []int{3}},
		{"warmup", []float64{undefined, undefined, -1, 1, 1}, []model.SideType{model.SideTypeBuy}, []int{3}},
	}

	series := prices(t, 10, 11, 12, 13, 14)
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			events, err := Crossover(series, derived("diff", tc.diff...), zero)
			require.NoError(t, err)
			assert.Equal(t, tc.sides, sides(events))
			assert.Equal(t, tc.indexes, indexes(events))

			level, err := CrossoverLevel(series, derived("diff", tc.diff...), 0)
			require.NoError(t, err)
			assert.Equal(t, events, level)
		})
	}
}

func TestCrossover_Price(t *testing.T) {
	series := prices(t, 10, 11, 12, 13)
	events, err := CrossoverLevel(series, derived("a", 1, 2, 4, 2), 3)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 12.0, events[0].Price)
	assert.Equal(t, day(2), events[0].Time)
	assert.Equal(t, 13.0, events[1].Price)
}

func TestCrossover_Deterministic(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 9, 8, 12, 14, 10, 11, 15, 9}
	series := prices(t, closes...)
	fast, err := indicator.EMA(series, 2)
	require.NoError(t, err)
	slow, err := indicator.EMA(series, 4)
	require.NoError(t, err)

	first, err := Crossover(series, fast, slow)
	require.NoError(t, err)
	second, err := Crossover(series, fast, slow)
	require.NoError(t, err)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Index, first[i].Index)
		assert.NotEqual(t, first[i-1].Side, first[i].Side)
	}
}

func TestCrossover_Filter(t *testing.T) {
	series := prices(t, 10, 11, 12, 13, 14, 15)
	// macd crosses its signal line upward twice: once below zero and once above
	macd := derived("macd", -3, -1, -2, 1, 3, 2)
	signalLine := derived("signal", -2, -2, -1, 2, 2, 2.5)

	events, err := Crossover(series, macd, signalLine)
	require.NoError(t, err)
	assert.Equal(t, []model.SideType{model.SideTypeBuy, model.SideTypeSell, model.SideTypeBuy, model.SideTypeSell},
		sides(events))

	filtered, err := Crossover(series, macd, signalLine, WithFilter(ZeroSide))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, indexes(filtered))
	assert.Equal(t, []model.SideType{model.SideTypeBuy, model.SideTypeSell}, sides(filtered))

	none, err := Crossover(series, macd, signalLine, WithFilter(func(model.SideType, float64, float64) bool {
		return false
	}))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestZeroSide(t *testing.T) {
	assert.True(t, ZeroSide(model.SideTypeBuy, -0.5, 0))
	assert.False(t, ZeroSide(model.SideTypeBuy, 0.5, 0))
	assert.False(t, ZeroSide(model.SideTypeBuy, 0, 0))
	assert.True(t, ZeroSide(model.SideTypeSell, 0.5, 0))
	assert.False(t, ZeroSide(model.SideTypeSell, -0.5, 0))
}

func TestCrossover_Errors(t *testing.T) {
	series := prices(t, 10, 11, 12)

	_, err := Crossover(series, derived("a", 1, 2), derived("b", 1, 2, 3))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = Crossover(series, derived("a", 1, 2, 3), nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	shifted := derived("a", 1, 2, 3)
	shifted.Time[1] = day(10)
	_, err = CrossoverLevel(series, shifted, 0)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	candles := series.Candles()
	candles[1].Close = math.NaN()
	broken, err := model.NewPriceSeries("TEST", candles)
	require.NoError(t, err)
	_, err = CrossoverLevel(broken, derived("a", -1, 1, 2), 0)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRegion(t *testing.T) {
	series := prices(t, 10, 11, 12, 13, 14, 15, 16, 17, 18)
	rsi := derived("rsi", undefined, 50, 71, 75, 69, 29, 25, 31, 70)

	events, err := Region(series, rsi, 70, 30, WithSource("rsi"))
	require.NoError(t, err)

	assert.Equal(t, []model.SignalEvent{
		{Time: day(2), Price: 12, Side: model.SideTypeSell, Index: 2, Source: "rsi"},
		{Time: day(5), Price: 15, Side: model.SideTypeBuy, Index: 5, Source: "rsi"},
		{Time: day(8), Price: 18, Side: model.SideTypeSell, Index: 8, Source: "rsi"},
	}, events)

	again, err := Region(series, rsi, 70, 30, WithSource("rsi"))
	require.NoError(t, err)
	assert.Equal(t, events, again)
}

func TestRegion_Errors(t *testing.T) {
	series := prices(t, 10, 11)

	_, err := Region(series, derived("rsi", 50, 60), 30, 70)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = Region(series, derived("rsi", 50), 70, 30)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestSign_String(t *testing.T) {
	assert.Equal(t, "undefined", SignUndefined.String())
	assert.Equal(t, "negative", SignNegative.String())
	assert.Equal(t, "zero", SignZero.String())
	assert.Equal(t, "positive", SignPositive.String())
}
