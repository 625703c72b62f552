package indicator

import (
	"fmt"

	engine "github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

func SMA(period int, color string) plot.Indicator {
	return &sma{
		Period: period,
		Color:  color,
	}
}

type sma struct {
	Period int
	Color  string
	Values *model.DerivedSeries
}

func (s sma) Warmup() int {
	return s.Period
}

func (s sma) Name() string {
	return fmt.Sprintf("SMA(%d)", s.Period)
}

func (s sma) Overlay() bool {
	return true
}

func (s *sma) Load(series *model.PriceSeries) (err error) {
	s.Values, err = engine.SMA(series, s.Period)
	return err
}

func (s sma) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		plot.NewMetric(s.Name(), s.Color, "line", s.Values),
	}
}
