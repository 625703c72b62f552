// Package monitor 以 Prometheus 格式导出分析过程的指标
package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
)

const namespace = "signalbot"

// Metrics 使用独立的 Registry，同一进程可以创建多个实例
type Metrics struct {
	registry *prometheus.Registry

	Evaluations *prometheus.CounterVec // labels: strategy
	Signals     *prometheus.CounterVec // labels: strategy, side
	LastSignal  *prometheus.GaugeVec   // labels: ticker, strategy
	Bars        *prometheus.GaugeVec   // labels: ticker
	RunDuration prometheus.Histogram
	RunFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Strategy evaluations finished",
		}, []string{"strategy"}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Buy and sell signals found",
		}, []string{"strategy", "side"}),
		LastSignal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_signal_timestamp_seconds",
			Help:      "Date of the last signal per ticker and strategy",
		}, []string{"ticker", "strategy"}),
		Bars: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bars",
			Help:      "Daily bars in the last analyzed series",
		}, []string{"ticker"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time to load and analyze one ticker",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		RunFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Tickers skipped because of an error",
		}),
	}

	m.registry.MustRegister(
		m.Evaluations,
		m.Signals,
		m.LastSignal,
		m.Bars,
		m.RunDuration,
		m.RunFailures,
	)

	return m
}

// OnResult 记录一次策略计算的结果
func (m *Metrics) OnResult(series *model.PriceSeries, result *strategy.Result) {
	m.Evaluations.WithLabelValues(result.Strategy).Inc()
	m.Bars.WithLabelValues(series.Ticker()).Set(float64(series.Len()))

	for _, event := range result.Events {
		m.Signals.WithLabelValues(result.Strategy, string(event.Side)).Inc()
	}
	if event, ok := result.LastEvent(); ok {
		m.LastSignal.WithLabelValues(result.Ticker, result.Strategy).Set(float64(event.Time.Unix()))
	}
}

// ObserveRun 记录一个股票的分析耗时，err 不为空时计入失败
func (m *Metrics) ObserveRun(_ string, duration time.Duration, err error) {
	m.RunDuration.Observe(duration.Seconds())
	if err != nil {
		m.RunFailures.Inc()
	}
}

// Handler 返回 /metrics 的 HTTP 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
