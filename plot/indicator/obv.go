package indicator

import (
	"time"

	"github.com/markcheno/go-talib"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

// OBV 能量潮，需要成交量
func OBV(color string) plot.Indicator {
	return &obv{
		Color: color,
	}
}

type obv struct {
	Color  string
	Values model.Series[float64]
	Time   []time.Time
}

func (e obv) Warmup() int {
	return 0
}

func (e obv) Name() string {
	return "OBV"
}

func (e obv) Overlay() bool {
	return false
}

func (e *obv) Load(series *model.PriceSeries) error {
	closes, err := series.Closes()
	if err != nil {
		return err
	}
	e.Values = talib.Obv(closes, series.Volumes())
	e.Time = series.Times()
	return nil
}

func (e obv) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		{
			Name:   e.Name(),
			Color:  e.Color,
			Style:  "line",
			Values: e.Values,
			Time:   e.Time,
		},
	}
}
