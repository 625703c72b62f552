package strategy

import (
	"errors"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/signal"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

// Fibonacci 计算区间的斐波那契回撤位，并用短期/长期 SMA 交叉给出信号
type Fibonacci struct {
	Short int
	Long  int
}

func (f Fibonacci) Name() string {
	return NameFibonacci
}

func (f Fibonacci) Warmup() int {
	return f.Long
}

func (f Fibonacci) Validate() error {
	return checkWindows(f.Short, f.Long)
}

func (f Fibonacci) Evaluate(series *model.PriceSeries) (*Result, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	levels, err := indicator.Fibonacci(series)
	if err != nil {
		return nil, err
	}

	short, err := indicator.SMA(series, f.Short)
	if err != nil {
		return nil, err
	}

	overlay := ChartIndicator{
		Overlay:   true,
		GroupName: "Fibonacci",
		Warmup:    f.Warmup(),
		Metrics: []IndicatorMetric{
			{Name: short.Name, Color: "orange", Style: StyleLine, Values: short},
		},
	}

	// 数据不够长期均线时只输出回撤位，不产生交叉信号
	events := make([]model.SignalEvent, 0)
	long, err := indicator.SMA(series, f.Long)
	switch {
	case errors.Is(err, model.ErrInsufficientData):
		log.WithField("ticker", series.Ticker()).
			Warnf("fibonacci: %v, crossover signals are skipped", err)
	case err != nil:
		return nil, err
	default:
		events, err = signal.Crossover(series, short, long, signal.WithSource(f.Name()))
		if err != nil {
			return nil, err
		}
		overlay.Metrics = append(overlay.Metrics,
			IndicatorMetric{Name: long.Name, Color: "purple", Style: StyleLine, Values: long})
	}

	if levels.Degenerate {
		log.WithField("ticker", series.Ticker()).
			Warnf("fibonacci: highest high equals lowest low (%.2f), levels are not drawn", levels.High)
	} else {
		times := series.Times()
		for _, level := range levels.Levels {
			overlay.Metrics = append(overlay.Metrics, IndicatorMetric{
				Name:   "Fib " + level.Label,
				Color:  "gray",
				Style:  StyleLevel,
				Values: levelSeries("Fib "+level.Label, times, level.Price),
			})
		}
	}

	return &Result{
		Strategy:   f.Name(),
		Ticker:     series.Ticker(),
		Events:     events,
		Levels:     levels,
		Indicators: []ChartIndicator{overlay},
	}, nil
}
