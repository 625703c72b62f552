package exchange

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
)

const yahooCSV = `Date,Open,High,Low,Close,Adj Close,Volume
2023-01-03,130.28,130.90,124.17,125.07,124.22,112117500
2023-01-04,126.89,128.66,125.08,126.36,125.50,89113600
2023-01-05,127.13,127.77,124.76,125.02,124.17,80962700
2023-01-06,126.01,130.29,124.89,129.62,128.74,87754700
2023-01-09,130.47,133.41,129.89,130.15,129.26,70790800
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func date(value string) time.Time {
	t, _ := time.Parse(model.DateLayout, value)
	return t
}

func TestNewCSVFeed(t *testing.T) {
	feed, err := NewCSVFeed(TickerFeed{Ticker: "AAPL", File: writeFile(t, "aapl.csv", yahooCSV)})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, feed.Tickers())
	candles := feed.Candles["AAPL"]
	require.Len(t, candles, 5)
	assert.Equal(t, model.Candle{
		Ticker: "AAPL",
		Time:   date("2023-01-03"),
		Open:   130.28,
		Close:  125.07,
		Low:    124.17,
		High:   130.90,
		Volume: 112117500,
	}, candles[0])

	series, err := model.NewPriceSeries("AAPL", candles)
	require.NoError(t, err)
	closes, err := series.Closes()
	require.NoError(t, err)
	assert.Equal(t, 130.15, closes.Last(0))
}

func TestReadCandles_Headerless(t *testing.T) {
	content := "1672704000,10,11,9,12,100\n1672790400,11,12,10,13,200\n"
	candles, err := ReadCandles("BTC", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, time.Unix(1672704000, 0).UTC(), candles[0].Time)
	assert.Equal(t, 10.0, candles[0].Open)
	assert.Equal(t, 11.0, candles[0].Close)
	assert.Equal(t, 9.0, candles[0].Low)
	assert.Equal(t, 12.0, candles[0].High)
	assert.Equal(t, int64(200), candles[1].Volume)
}

func TestReadCandles_MissingValues(t *testing.T) {
	content := "date,open,high,low,close\n2023-01-03,1,2,1,null\n2023-01-04,1,2,1,\n"
	candles, err := ReadCandles("X", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.True(t, math.IsNaN(candles[0].Close))
	assert.True(t, math.IsNaN(candles[1].Close))
	assert.Zero(t, candles[0].Volume)

	series, err := model.NewPriceSeries("X", candles)
	require.NoError(t, err)
	_, err = series.Closes()
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestReadCandles_Errors(t *testing.T) {
	tt := map[string]string{
		"empty":          "",
		"missing column": "date,open,high,close\n2023-01-03,1,2,1\n",
		"bad date":       "date,open,high,low,close\n03/01/2023,1,2,1,1\n",
		"bad price":      "date,open,high,low,close\n2023-01-03,one,2,1,1\n",
		"bad volume":     "date,open,high,low,close,volume\n2023-01-03,1,2,1,1,-5\n",
	}
	for name, content := range tt {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCandles("X", strings.NewReader(content))
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	_, err := NewCSVFeed(TickerFeed{Ticker: "X", File: filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, err)
}

func TestCSVFeed_Queries(t *testing.T) {
	ctx := context.Background()
	feed, err := NewCSVFeed(TickerFeed{Ticker: "AAPL", File: writeFile(t, "aapl.csv", yahooCSV)})
	require.NoError(t, err)

	candles, err := feed.CandlesByPeriod(ctx, "AAPL", date("2023-01-04"), date("2023-01-06"))
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Equal(t, date("2023-01-04"), candles[0].Time)
	assert.Equal(t, date("2023-01-06"), candles[2].Time)

	all, err := feed.CandlesByPeriod(ctx, "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	last, err := feed.CandlesByLimit(ctx, "AAPL", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, date("2023-01-09"), last[1].Time)

	// queries do not consume data
	again, err := feed.CandlesByLimit(ctx, "AAPL", 2)
	require.NoError(t, err)
	assert.Equal(t, last, again)

	_, err = feed.CandlesByLimit(ctx, "AAPL", 10)
	assert.ErrorIs(t, err, model.ErrInsufficientData)

	_, err = feed.CandlesByPeriod(ctx, "MSFT", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = feed.CandlesByPeriod(canceled, "AAPL", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCSVFeed_Limit(t *testing.T) {
	feed, err := NewCSVFeed(TickerFeed{Ticker: "AAPL", File: writeFile(t, "aapl.csv", yahooCSV)})
	require.NoError(t, err)

	feed.Limit(96 * time.Hour)
	candles := feed.Candles["AAPL"]
	require.Len(t, candles, 2)
	assert.Equal(t, date("2023-01-06"), candles[0].Time)
}
