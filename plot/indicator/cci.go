package indicator

import (
	"fmt"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

// CCI 顺势指标
func CCI(period int, color string) plot.Indicator {
	return &cci{
		Period: period,
		Color:  color,
	}
}

type cci struct {
	Period int
	Color  string
	Values model.Series[float64]
	Time   []time.Time
}

func (c cci) Warmup() int {
	return c.Period - 1
}

func (c cci) Name() string {
	return fmt.Sprintf("CCI(%d)", c.Period)
}

func (c cci) Overlay() bool {
	return false
}

func (c *cci) Load(series *model.PriceSeries) error {
	highs, lows, closes, err := hlc(series)
	if err != nil {
		return err
	}
	if series.Len() <= c.Warmup() {
		return fmt.Errorf("%w: %s needs %d bars", model.ErrInsufficientData, c.Name(), c.Period)
	}
	c.Values, c.Time, err = skipWarmup(talib.Cci(highs, lows, closes, c.Period), series.Times(), c.Warmup())
	return err
}

func (c cci) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		{
			Name:   c.Name(),
			Color:  c.Color,
			Style:  "line",
			Values: c.Values,
			Time:   c.Time,
		},
	}
}
