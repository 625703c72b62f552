package indicator

import (
	"fmt"

	engine "github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/plot"
)

func BollingerBands(period int, stdDeviation float64, upDnBandColor, midBandColor string) plot.Indicator {
	return &bollingerBands{
		Period:        period,
		StdDeviation:  stdDeviation,
		UpDnBandColor: upDnBandColor,
		MidBandColor:  midBandColor,
	}
}

type bollingerBands struct {
	Period        int
	StdDeviation  float64
	UpDnBandColor string
	MidBandColor  string
	Bands         *engine.Bands
}

func (bb bollingerBands) Warmup() int {
	return bb.Period
}

func (bb bollingerBands) Name() string {
	return fmt.Sprintf("BB(%d, %.2f)", bb.Period, bb.StdDeviation)
}

func (bb bollingerBands) Overlay() bool {
	return true
}

func (bb *bollingerBands) Load(series *model.PriceSeries) (err error) {
	bb.Bands, err = engine.BollingerBands(series, bb.Period, bb.StdDeviation)
	return err
}

func (bb bollingerBands) Metrics() []plot.IndicatorMetric {
	return []plot.IndicatorMetric{
		plot.NewMetric("Upper", bb.UpDnBandColor, "line", bb.Bands.Upper),
		plot.NewMetric("Middle", bb.MidBandColor, "line", bb.Bands.Middle),
		plot.NewMetric("Lower", bb.UpDnBandColor, "line", bb.Bands.Lower),
	}
}
