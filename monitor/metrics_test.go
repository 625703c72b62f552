package monitor

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, recorder.Code)
	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_OnResult(t *testing.T) {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, 5)
	for i, c := range []float64{10, 11, 9, 12, 8} {
		candles[i] = model.Candle{Time: day.AddDate(0, 0, i), Open: c, Close: c, High: c, Low: c}
	}
	series, err := model.NewPriceSeries("AAPL", candles)
	require.NoError(t, err)

	result, err := strategy.MovingAverageCross{Kind: strategy.KindSMA, Short: 2, Long: 3}.Evaluate(series)
	require.NoError(t, err)
	require.Len(t, result.Events, 2)

	m := NewMetrics()
	m.OnResult(series, result)

	body := scrape(t, m)
	assert.Contains(t, body, `signalbot_evaluations_total{strategy="sma-cross"} 1`)
	assert.Contains(t, body, `signalbot_signals_total{side="BUY",strategy="sma-cross"} 1`)
	assert.Contains(t, body, `signalbot_signals_total{side="SELL",strategy="sma-cross"} 1`)
	assert.Contains(t, body, `signalbot_bars{ticker="AAPL"} 5`)
	assert.Contains(t, body, `signalbot_last_signal_timestamp_seconds{strategy="sma-cross",ticker="AAPL"}`)
}

func TestMetrics_ObserveRun(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun("AAPL", 20*time.Millisecond, nil)
	m.ObserveRun("MSFT", time.Millisecond, errors.New("broken file"))

	body := scrape(t, m)
	assert.Contains(t, body, "signalbot_run_duration_seconds_count 2")
	assert.Contains(t, body, "signalbot_run_failures_total 1")

	// 每个实例使用自己的 registry
	assert.NotContains(t, scrape(t, NewMetrics()), "signalbot_run_failures_total 1")
}
