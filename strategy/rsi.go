package strategy

import (
	"fmt"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/signal"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

// RSI 进入超买区卖出，进入超卖区买入
type RSI struct {
	Period     int
	Overbought float64
	Oversold   float64
}

func (r RSI) Name() string {
	return NameRSI
}

func (r RSI) Warmup() int {
	return 2
}

func (r RSI) Validate() error {
	if r.Period < 1 {
		return fmt.Errorf("%w: rsi period must be positive, got %d", model.ErrInvalidParameter, r.Period)
	}
	if r.Oversold <= 0 || r.Overbought > 100 || r.Oversold >= r.Overbought {
		return fmt.Errorf("%w: rsi thresholds must satisfy 0 < oversold < overbought <= 100, got %v/%v",
			model.ErrInvalidParameter, r.Oversold, r.Overbought)
	}
	return nil
}

func (r RSI) Evaluate(series *model.PriceSeries) (*Result, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rsi, err := indicator.RSI(series, r.Period)
	if err != nil {
		return nil, err
	}

	events, err := signal.Region(series, rsi, r.Overbought, r.Oversold, signal.WithSource(r.Name()))
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"ticker":   series.Ticker(),
		"strategy": r.Name(),
		"events":   len(events),
	}).Debug("rsi evaluated")

	return &Result{
		Strategy: r.Name(),
		Ticker:   series.Ticker(),
		Events:   events,
		Indicators: []ChartIndicator{
			{
				GroupName: rsi.Name,
				Warmup:    r.Warmup(),
				Metrics: []IndicatorMetric{
					{Name: rsi.Name, Color: "purple", Style: StyleLine, Values: rsi},
					{Name: "Overbought", Color: "red", Style: StyleLevel,
						Values: levelSeries("Overbought", rsi.Time, r.Overbought)},
					{Name: "Oversold", Color: "green", Style: StyleLevel,
						Values: levelSeries("Oversold", rsi.Time, r.Oversold)},
				},
			},
		},
	}, nil
}
