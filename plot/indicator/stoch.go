package indicator

import (
	"fmt"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

func Stoch(fastK, slowK, slowD int, colorK, colorD string) plot.Indicator {
	return &stoch{
		FastK:  fastK,
		SlowK:  slowK,
		SlowD:  slowD,
		ColorK: colorK,
		ColorD: colorD,
	}
}

type stoch struct {
	FastK   int
	SlowK   int
	SlowD   int
	ColorK  string
	ColorD  string
	ValuesK model.Series[float64]
	ValuesD model.Series[float64]
	Time    []time.Time
}

// 预热期取决于三个周期
func (e stoch) Warmup() int {
	return e.FastK + e.SlowK + e.SlowD - 3
}

func (e stoch) Name() string {
	return fmt.Sprintf("STOCH(%d, %d, %d)", e.FastK, e.SlowK, e.SlowD)
}

func (e stoch) Overlay() bool {
	return false
}

func (e *stoch) Load(series *model.PriceSeries) error {
	highs, lows, closes, err := hlc(series)
	if err != nil {
		return err
	}
	if series.Len() <= e.Warmup() {
		return fmt.Errorf("%w: %s needs %d bars", model.ErrInsufficientData, e.Name(), e.Warmup()+1)
	}

	k, d := talib.Stoch(highs, lows, closes, e.FastK, e.SlowK, talib.SMA, e.SlowD, talib.SMA)
	times := series.Times()
	if e.ValuesK, e.Time, err = skipWarmup(k, times, e.Warmup()); err != nil {
		return err
	}
	e.ValuesD, _, err = skipWarmup(d, times, e.Warmup())
	return err
}

func (e stoch) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		{
			Color:  e.ColorK,
			Name:   "K",
			Style:  "line",
			Values: e.ValuesK,
			Time:   e.Time,
		},
		{
			Color:  e.ColorD,
			Name:   "D",
			Style:  "line",
			Values: e.ValuesD,
			Time:   e.Time,
		},
	}
}
