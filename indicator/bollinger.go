package indicator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/rodrigo-brito/signalbot/model"
)

// 布林带默认参数
const (
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0
)

// Bands 布林带：中轨为 SMA，上下轨为中轨加减 K 倍标准差
type Bands struct {
	Period int
	K      float64

	Middle *model.DerivedSeries
	Upper  *model.DerivedSeries
	Lower  *model.DerivedSeries
	StdDev *model.DerivedSeries
}

// StdDev 收盘价的滚动样本标准差（自由度 n-1），窗口对齐方式与 SMA 相同。
func StdDev(series *model.PriceSeries, period int) (*model.DerivedSeries, error) {
	if period < 2 {
		return nil, fmt.Errorf("%w: standard deviation period must be >= 2, got %d",
			model.ErrInvalidParameter, period)
	}

	name := fmt.Sprintf("STD(%d)", period)
	if err := checkLength(series, name, period); err != nil {
		return nil, err
	}

	closes, err := series.Closes()
	if err != nil {
		return nil, err
	}

	values := make([]model.Value, len(closes))
	for i := period - 1; i < len(closes); i++ {
		// stat.StdDev 计算的是无偏的样本标准差
		values[i] = model.Defined(stat.StdDev(closes.Window(i, period), nil))
	}

	return model.NewDerivedSeries(name, series.Times(), values), nil
}

// BollingerBands 计算布林带，period >= 2，k > 0
func BollingerBands(series *model.PriceSeries, period int, k float64) (*Bands, error) {
	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("%w: bollinger k must be a positive number, got %v", model.ErrInvalidParameter, k)
	}

	std, err := StdDev(series, period)
	if err != nil {
		return nil, err
	}

	middle, err := SMA(series, period)
	if err != nil {
		return nil, err
	}

	upper := make([]model.Value, middle.Len())
	lower := make([]model.Value, middle.Len())
	for i, m := range middle.Values {
		s := std.Values[i]
		if !m.Valid || !s.Valid {
			continue
		}
		upper[i] = model.Defined(m.Float + k*s.Float)
		lower[i] = model.Defined(m.Float - k*s.Float)
	}

	return &Bands{
		Period: period,
		K:      k,
		Middle: middle,
		Upper:  model.NewDerivedSeries(fmt.Sprintf("BB Upper(%d, %g)", period, k), middle.Time, upper),
		Lower:  model.NewDerivedSeries(fmt.Sprintf("BB Lower(%d, %g)", period, k), middle.Time, lower),
		StdDev: std,
	}, nil
}
