package indicator

import (
	"fmt"

	engine "github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

func EMA(period int, color string) plot.Indicator {
	return &ema{
		Period: period,
		Color:  color,
	}
}

type ema struct {
	Period int
	Color  string
	Values *model.DerivedSeries
}

func (e ema) Warmup() int {
	return 1
}

func (e ema) Name() string {
	return fmt.Sprintf("EMA(%d)", e.Period)
}

func (e ema) Overlay() bool {
	return true
}

func (e *ema) Load(series *model.PriceSeries) (err error) {
	e.Values, err = engine.EMA(series, e.Period)
	return err
}

func (e ema) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		plot.NewMetric(e.Name(), e.Color, "line", e.Values),
	}
}
