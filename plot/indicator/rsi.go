package indicator

import (
	"fmt"

	engine "github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

func RSI(period int, color string) plot.Indicator {
	return &rsi{
		Period: period,
		Color:  color,
	}
}

type rsi struct {
	Period int
	Color  string
	Values *model.DerivedSeries
}

// RSI 第一个值未定义
func (e rsi) Warmup() int {
	return 2
}

func (e rsi) Name() string {
	return fmt.Sprintf("RSI(%d)", e.Period)
}

func (e rsi) Overlay() bool {
	return false
}

func (e *rsi) Load(series *model.PriceSeries) (err error) {
	e.Values, err = engine.RSI(series, e.Period)
	return err
}

func (e rsi) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		plot.NewMetric(e.Name(), e.Color, "line", e.Values),
	}
}
