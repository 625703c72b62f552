package strategy

import (
	"time"

	"github.com/rodrigo-brito/signalbot/model"
)

// MetricStyle 图表中的绘制样式
type MetricStyle string

const (
	StyleBar       = "bar"
	StyleScatter   = "scatter"
	StyleLine      = "line"
	StyleHistogram = "histogram"
	StyleWaterfall = "waterfall"
	StyleLevel     = "level" // 水平线，如超买超卖阈值、斐波那契回撤位
)

// IndicatorMetric 图表中的一条线
type IndicatorMetric struct {
	Name   string
	Color  string
	Style  MetricStyle // 默认为折线
	Values *model.DerivedSeries
}

// ChartIndicator 一组画在同一个面板里的指标
type ChartIndicator struct {
	Metrics   []IndicatorMetric
	Overlay   bool // 是否叠加在K线上
	GroupName string
	Warmup    int
}

// Time 返回该组指标的时间轴
func (c ChartIndicator) Time() []time.Time {
	if len(c.Metrics) == 0 {
		return nil
	}
	return c.Metrics[0].Values.Time
}

// levelSeries 生成一条常数序列，用于画水平线
func levelSeries(name string, times []time.Time, value float64) *model.DerivedSeries {
	values := make([]model.Value, len(times))
	for i := range values {
		values[i] = model.Defined(value)
	}
	return model.NewDerivedSeries(name, times, values)
}
