package strategy

import (
	"fmt"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/signal"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

// MovingAverageKind 均线类型
type MovingAverageKind string

const (
	KindEMA MovingAverageKind = "ema"
	KindSMA MovingAverageKind = "sma"
)

// MovingAverageCross 短期均线上穿长期均线买入，下穿卖出
type MovingAverageCross struct {
	Kind  MovingAverageKind
	Short int
	Long  int
}

func (m MovingAverageCross) Name() string {
	return string(m.Kind) + "-cross"
}

func (m MovingAverageCross) Warmup() int {
	if m.Kind == KindEMA {
		return 1
	}
	return m.Long
}

func (m MovingAverageCross) Validate() error {
	if m.Kind != KindEMA && m.Kind != KindSMA {
		return fmt.Errorf("%w: unknown moving average kind %q", model.ErrInvalidParameter, m.Kind)
	}
	return checkWindows(m.Short, m.Long)
}

func (m MovingAverageCross) average(series *model.PriceSeries, window int) (*model.DerivedSeries, error) {
	if m.Kind == KindEMA {
		return indicator.EMA(series, window)
	}
	return indicator.SMA(series, window)
}

func (m MovingAverageCross) Evaluate(series *model.PriceSeries) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	short, err := m.average(series, m.Short)
	if err != nil {
		return nil, err
	}
	long, err := m.average(series, m.Long)
	if err != nil {
		return nil, err
	}

	events, err := signal.Crossover(series, short, long, signal.WithSource(m.Name()))
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"ticker":   series.Ticker(),
		"strategy": m.Name(),
		"events":   len(events),
	}).Debug("moving average crossover evaluated")

	return &Result{
		Strategy: m.Name(),
		Ticker:   series.Ticker(),
		Events:   events,
		Indicators: []ChartIndicator{
			{
				Overlay:   true,
				GroupName: "MA's",
				Warmup:    m.Warmup(),
				Metrics: []IndicatorMetric{
					{Name: short.Name, Color: "red", Style: StyleLine, Values: short},
					{Name: long.Name, Color: "blue", Style: StyleLine, Values: long},
				},
			},
		},
	}, nil
}
