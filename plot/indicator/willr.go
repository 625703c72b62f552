package indicator

import (
	"fmt"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

// WillR 威廉指标，取值范围 -100 到 0
func WillR(period int, color string) plot.Indicator {
	return &willR{
		Period: period,
		Color:  color,
	}
}

type willR struct {
	Period int
	Color  string
	Values model.Series[float64]
	Time   []time.Time
}

func (w willR) Warmup() int {
	return w.Period - 1
}

func (w willR) Name() string {
	return fmt.Sprintf("%%R(%d)", w.Period)
}

func (w willR) Overlay() bool {
	return false
}

func (w *willR) Load(series *model.PriceSeries) error {
	highs, lows, closes, err := hlc(series)
	if err != nil {
		return err
	}
	if series.Len() <= w.Warmup() {
		return fmt.Errorf("%w: %s needs %d bars", model.ErrInsufficientData, w.Name(), w.Period)
	}
	w.Values, w.Time, err = skipWarmup(talib.WillR(highs, lows, closes, w.Period), series.Times(), w.Warmup())
	return err
}

func (w willR) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		{
			Name:   w.Name(),
			Color:  w.Color,
			Style:  "line",
			Values: w.Values,
			Time:   w.Time,
		},
	}
}
