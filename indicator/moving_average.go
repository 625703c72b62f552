package indicator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/rodrigo-brito/signalbot/model"
)

// SMA 简单移动平均。索引 i >= window-1 时为 [i-window+1, i] 收盘价的算术平均，之前未定义。
// K线数量少于 window 时返回 ErrInsufficientData。
func SMA(series *model.PriceSeries, window int) (*model.DerivedSeries, error) {
	if err := checkPositive("sma window", window); err != nil {
		return nil, err
	}

	name := fmt.Sprintf("SMA(%d)", window)
	if err := checkLength(series, name, window); err != nil {
		return nil, err
	}

	closes, err := series.Closes()
	if err != nil {
		return nil, err
	}

	return model.NewDerivedSeries(name, series.Times(), sma(defined(closes), window)), nil
}

// EMA 指数移动平均，递推式 ema[0] = close[0]，ema[i] = close[i]*α + ema[i-1]*(1-α)，α = 2/(span+1)。
// 从索引 0 开始就有定义，没有预热期。
func EMA(series *model.PriceSeries, span int) (*model.DerivedSeries, error) {
	if err := checkPositive("ema span", span); err != nil {
		return nil, err
	}

	closes, err := series.Closes()
	if err != nil {
		return nil, err
	}

	return model.NewDerivedSeries(fmt.Sprintf("EMA(%d)", span), series.Times(), ema(defined(closes), span)), nil
}

// SMAOf 对一个已计算的序列再做简单移动平均，窗口内有未定义值时结果未定义
func SMAOf(input *model.DerivedSeries, window int) (*model.DerivedSeries, error) {
	if err := checkPositive("sma window", window); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("SMA(%s, %d)", input.Name, window)
	return model.NewDerivedSeries(name, input.Time, sma(input.Values, window)), nil
}

// EMAOf 对一个已计算的序列再做指数移动平均。
// 递推从第一个已定义的值重新开始，未定义的位置输出也未定义。
func EMAOf(input *model.DerivedSeries, span int) (*model.DerivedSeries, error) {
	if err := checkPositive("ema span", span); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("EMA(%s, %d)", input.Name, span)
	return model.NewDerivedSeries(name, input.Time, ema(input.Values, span)), nil
}

func sma(values []model.Value, window int) []model.Value {
	result := make([]model.Value, len(values))
	buffer := make([]float64, window)

	for i := window - 1; i < len(values); i++ {
		valid := true
		for j, v := range values[i-window+1 : i+1] {
			if !v.Valid {
				valid = false
				break
			}
			buffer[j] = v.Float
		}
		if valid {
			result[i] = model.Defined(floats.Sum(buffer) / float64(window))
		}
	}

	return result
}

func ema(values []model.Value, span int) []model.Value {
	alpha := 2 / (float64(span) + 1)
	result := make([]model.Value, len(values))

	var prev model.Value
	for i, v := range values {
		switch {
		case !v.Valid:
			// 未定义，下一个有效值重新作为种子
		case !prev.Valid:
			result[i] = model.Defined(v.Float)
		default:
			result[i] = model.Defined(v.Float*alpha + prev.Float*(1-alpha))
		}
		prev = result[i]
	}

	return result
}
