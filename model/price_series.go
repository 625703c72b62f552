package model

import (
	"fmt"
	"math"
	"time"
)

// PriceSeries 是按日期严格递增的K线序列，所有指标的输入。
// 构造之后不可修改，访问方法都返回副本。
type PriceSeries struct {
	ticker  string
	candles []Candle
}

// NewPriceSeries 校验并复制输入的K线。
// 序列不能为空，日期必须严格递增且不重复。
func NewPriceSeries(ticker string, candles []Candle) (*PriceSeries, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: empty price series for %q", ErrInvalidInput, ticker)
	}

	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			return nil, fmt.Errorf("%w: %s: bar %d (%s) is not after bar %d (%s)", ErrInvalidInput, ticker,
				i, candles[i].Time.Format(DateLayout), i-1, candles[i-1].Time.Format(DateLayout))
		}
	}

	series := &PriceSeries{
		ticker:  ticker,
		candles: make([]Candle, len(candles)),
	}
	copy(series.candles, candles)
	for i := range series.candles {
		series.candles[i].Ticker = ticker
	}

	return series, nil
}

// Ticker 返回股票代码
func (p *PriceSeries) Ticker() string {
	return p.ticker
}

// Len 返回K线数量
func (p *PriceSeries) Len() int {
	return len(p.candles)
}

// Candle 返回第 i 根K线
func (p *PriceSeries) Candle(i int) Candle {
	return p.candles[i]
}

// Candles 返回全部K线的副本
func (p *PriceSeries) Candles() []Candle {
	candles := make([]Candle, len(p.candles))
	copy(candles, p.candles)
	return candles
}

// Time 返回第 i 根K线的日期
func (p *PriceSeries) Time(i int) time.Time {
	return p.candles[i].Time
}

// Times 返回日期序列的副本
func (p *PriceSeries) Times() []time.Time {
	times := make([]time.Time, len(p.candles))
	for i, candle := range p.candles {
		times[i] = candle.Time
	}
	return times
}

// First 返回第一根K线的日期
func (p *PriceSeries) First() time.Time {
	return p.candles[0].Time
}

// LastTime 返回最后一根K线的日期
func (p *PriceSeries) LastTime() time.Time {
	return p.candles[len(p.candles)-1].Time
}

// Closes 返回收盘价。任一收盘价缺失或非正时返回 ErrInvalidInput。
func (p *PriceSeries) Closes() (Series[float64], error) {
	return p.field("close", func(c Candle) float64 { return c.Close })
}

// Highs 返回最高价
func (p *PriceSeries) Highs() (Series[float64], error) {
	return p.field("high", func(c Candle) float64 { return c.High })
}

// Lows 返回最低价
func (p *PriceSeries) Lows() (Series[float64], error) {
	return p.field("low", func(c Candle) float64 { return c.Low })
}

// Volumes 返回成交量，成交量不参与指标计算，所以不做校验
func (p *PriceSeries) Volumes() Series[float64] {
	volumes := make(Series[float64], len(p.candles))
	for i, candle := range p.candles {
		volumes[i] = float64(candle.Volume)
	}
	return volumes
}

func (p *PriceSeries) field(name string, get func(Candle) float64) (Series[float64], error) {
	values := make(Series[float64], len(p.candles))
	for i, candle := range p.candles {
		v := get(candle)
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, fmt.Errorf("%w: %s: missing or non-positive %s at bar %d (%s)", ErrInvalidInput,
				p.ticker, name, i, candle.Time.Format(DateLayout))
		}
		values[i] = v
	}
	return values, nil
}

// Window 返回日期落在 [start, end] 内的子序列。零值的 start/end 表示不限制。
func (p *PriceSeries) Window(start, end time.Time) (*PriceSeries, error) {
	candles := make([]Candle, 0, len(p.candles))
	for _, candle := range p.candles {
		if !start.IsZero() && candle.Time.Before(start) {
			continue
		}
		if !end.IsZero() && candle.Time.After(end) {
			continue
		}
		candles = append(candles, candle)
	}
	return NewPriceSeries(p.ticker, candles)
}

// Last 返回最后 n 根K线组成的子序列
func (p *PriceSeries) Last(n int) (*PriceSeries, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: last bars must be positive, got %d", ErrInvalidParameter, n)
	}
	if n > len(p.candles) {
		n = len(p.candles)
	}
	return NewPriceSeries(p.ticker, p.candles[len(p.candles)-n:])
}
