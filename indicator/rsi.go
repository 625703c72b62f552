package indicator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/rodrigo-brito/signalbot/model"
)

const (
	// DefaultRSIPeriod RSI 的默认周期
	DefaultRSIPeriod = 14
	// NeutralRSI 平均涨幅和平均跌幅同时为 0（价格不变）时使用的值
	NeutralRSI = 50.0
)

// RSI 相对强弱指数。
//
// 涨跌幅 delta[i] = close[i] - close[i-1]，gain/loss 为其正负部分。平均涨跌幅取最近 period 个值的
// 简单平均，不足 period 个时用已有的值（min_periods = 1），索引 0 的 gain/loss 按 0 计入窗口。
// 索引 0 没有 delta，结果未定义。平均跌幅为 0 时 RSI 为 100，涨跌都为 0 时为 NeutralRSI。
func RSI(series *model.PriceSeries, period int) (*model.DerivedSeries, error) {
	if err := checkPositive("rsi period", period); err != nil {
		return nil, err
	}

	closes, err := series.Closes()
	if err != nil {
		return nil, err
	}

	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	values := make([]model.Value, n)
	for i := 1; i < n; i++ {
		start := i - period + 1
		if start < 0 {
			start = 0
		}
		count := float64(i + 1 - start)
		avgGain := floats.Sum(gains[start:i+1]) / count
		avgLoss := floats.Sum(losses[start:i+1]) / count
		values[i] = model.Defined(rsiValue(avgGain, avgLoss))
	}

	return model.NewDerivedSeries(fmt.Sprintf("RSI(%d)", period), series.Times(), values), nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return NeutralRSI
	case avgLoss == 0:
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}
