package indicator

import (
	"fmt"

	engine "github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

func MACD(fast, slow, signal int, colorMACD, colorMACDSignal, colorMACDHist string) plot.Indicator {
	return &macd{
		Fast:            fast,
		Slow:            slow,
		Signal:          signal,
		ColorMACD:       colorMACD,
		ColorMACDSignal: colorMACDSignal,
		ColorMACDHist:   colorMACDHist,
	}
}

type macd struct {
	Fast            int
	Slow            int
	Signal          int
	ColorMACD       string
	ColorMACDSignal string
	ColorMACDHist   string
	Result          *engine.MACDResult
}

func (e macd) Warmup() int {
	return 1
}

func (e macd) Name() string {
	return fmt.Sprintf("MACD(%d, %d, %d)", e.Fast, e.Slow, e.Signal)
}

func (e macd) Overlay() bool {
	return false
}

func (e *macd) Load(series *model.PriceSeries) (err error) {
	e.Result, err = engine.MACD(series, e.Fast, e.Slow, e.Signal)
	return err
}

func (e macd) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		plot.NewMetric("MACD", e.ColorMACD, "line", e.Result.MACD),
		plot.NewMetric("MACDSignal", e.ColorMACDSignal, "line", e.Result.Signal),
		plot.NewMetric("MACDHist", e.ColorMACDHist, "histogram", e.Result.Histogram),
	}
}
