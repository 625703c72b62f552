package indicator

import (
	"fmt"

	"github.com/rodrigo-brito/signalbot/model"
)

// MACD 的默认周期
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACDResult 包含 MACD 线、信号线和柱状图，三者都从索引 0 开始有定义
type MACDResult struct {
	MACD      *model.DerivedSeries
	Signal    *model.DerivedSeries
	Histogram *model.DerivedSeries
}

// MACD 计算 macd = EMA(fast) - EMA(slow)，signal = EMA(macd, signal)，histogram = macd - signal。
// 要求 fast < slow。
func MACD(series *model.PriceSeries, fast, slow, signal int) (*MACDResult, error) {
	spans := []struct {
		name  string
		value int
	}{{"macd fast", fast}, {"macd slow", slow}, {"macd signal", signal}}
	for _, span := range spans {
		if err := checkPositive(span.name, span.value); err != nil {
			return nil, err
		}
	}
	if fast >= slow {
		return nil, fmt.Errorf("%w: macd fast span (%d) must be lower than slow span (%d)",
			model.ErrInvalidParameter, fast, slow)
	}

	fastEMA, err := EMA(series, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMA(series, slow)
	if err != nil {
		return nil, err
	}

	times := series.Times()
	macdValues := make([]model.Value, series.Len())
	for i := range macdValues {
		macdValues[i] = model.Defined(fastEMA.Values[i].Float - slowEMA.Values[i].Float)
	}
	macdLine := model.NewDerivedSeries(fmt.Sprintf("MACD(%d, %d)", fast, slow), times, macdValues)

	signalValues := ema(macdValues, signal)
	signalLine := model.NewDerivedSeries(fmt.Sprintf("MACDSignal(%d)", signal), times, signalValues)

	histogram := make([]model.Value, len(macdValues))
	for i := range histogram {
		histogram[i] = model.Defined(macdValues[i].Float - signalValues[i].Float)
	}

	return &MACDResult{
		MACD:      macdLine,
		Signal:    signalLine,
		Histogram: model.NewDerivedSeries("MACDHist", times, histogram),
	}, nil
}
