package strategy

import (
	"fmt"
	"math"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
)

// Bollinger 只输出布林带，不产生信号
type Bollinger struct {
	Period int
	K      float64
}

func (b Bollinger) Name() string {
	return NameBollinger
}

func (b Bollinger) Warmup() int {
	return b.Period
}

func (b Bollinger) Validate() error {
	if b.Period < 2 {
		return fmt.Errorf("%w: bollinger period must be >= 2, got %d", model.ErrInvalidParameter, b.Period)
	}
	if b.K <= 0 || math.IsNaN(b.K) || math.IsInf(b.K, 0) {
		return fmt.Errorf("%w: bollinger k must be positive, got %v", model.ErrInvalidParameter, b.K)
	}
	return nil
}

func (b Bollinger) Evaluate(series *model.PriceSeries) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	bands, err := indicator.BollingerBands(series, b.Period, b.K)
	if err != nil {
		return nil, err
	}

	return &Result{
		Strategy: b.Name(),
		Ticker:   series.Ticker(),
		Events:   []model.SignalEvent{},
		Indicators: []ChartIndicator{
			{
				Overlay:   true,
				GroupName: "Bollinger Bands",
				Warmup:    b.Warmup(),
				Metrics: []IndicatorMetric{
					{Name: "Upper", Color: "red", Style: StyleLine, Values: bands.Upper},
					{Name: "Middle", Color: "blue", Style: StyleLine, Values: bands.Middle},
					{Name: "Lower", Color: "green", Style: StyleLine, Values: bands.Lower},
				},
			},
			{
				GroupName: bands.StdDev.Name,
				Warmup:    b.Warmup(),
				Metrics: []IndicatorMetric{
					{Name: bands.StdDev.Name, Color: "gray", Style: StyleLine, Values: bands.StdDev},
				},
			},
		},
	}, nil
}
