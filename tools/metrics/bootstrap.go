// Package metrics 对价格序列做描述性统计，用于报表中的收益分布部分。
package metrics

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/rodrigo-brito/signalbot/model"
)

// TradingDays 一年的交易日数量，用于年化波动率
const TradingDays = 252

// BootstrapInterval 自助法得到的统计量区间
type BootstrapInterval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

// Returns 计算相邻收盘价的简单收益率，长度为 len(closes)-1
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return []float64{}
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = closes[i]/closes[i-1] - 1
	}
	return returns
}

// Mean 算术平均
func Mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// Volatility 年化波动率，日收益率的样本标准差乘以 sqrt(252)
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDays)
}

// Bootstrap 有放回地重采样 sampleSize 次，对每个样本计算 measure，
// 返回这些统计量的均值、标准差以及 confidence 置信区间。
func Bootstrap(values []float64, measure func([]float64) float64, sampleSize int,
	confidence float64) (BootstrapInterval, error) {

	if len(values) == 0 {
		return BootstrapInterval{}, fmt.Errorf("%w: bootstrap needs at least one value", model.ErrInsufficientData)
	}
	if sampleSize < 1 || confidence <= 0 || confidence >= 1 {
		return BootstrapInterval{}, fmt.Errorf("%w: bootstrap sample size %d, confidence %v",
			model.ErrInvalidParameter, sampleSize, confidence)
	}

	data := make([]float64, 0, sampleSize)
	samples := make([]float64, len(values))
	for i := 0; i < sampleSize; i++ {
		for j := range samples {
			samples[j] = lo.Sample(values)
		}
		data = append(data, measure(samples))
	}

	tail := 1 - confidence
	sort.Float64s(data)
	mean, stdDev := stat.MeanStdDev(data, nil)

	return BootstrapInterval{
		Lower:  stat.Quantile(tail/2, stat.LinInterp, data, nil),
		Upper:  stat.Quantile(1-tail/2, stat.LinInterp, data, nil),
		StdDev: stdDev,
		Mean:   mean,
	}, nil
}
