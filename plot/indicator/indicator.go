// Package indicator 提供可以直接挂在图表上的附加指标，
// 与策略使用的指标不同，它们只用于展示。
package indicator

import (
	"fmt"
	"time"

	"github.com/rodrigo-brito/signalbot/model"
)

// hlc 返回最高价、最低价和收盘价
func hlc(series *model.PriceSeries) (highs, lows, closes model.Series[float64], err error) {
	if highs, err = series.Highs(); err != nil {
		return nil, nil, nil, err
	}
	if lows, err = series.Lows(); err != nil {
		return nil, nil, nil, err
	}
	if closes, err = series.Closes(); err != nil {
		return nil, nil, nil, err
	}
	return highs, lows, closes, nil
}

// skipWarmup 去掉前 warmup 个值，talib 在预热期内输出 0
func skipWarmup(values []float64, times []time.Time, warmup int) (model.Series[float64], []time.Time, error) {
	if len(values) <= warmup {
		return nil, nil, fmt.Errorf("%w: %d bars, %d needed", model.ErrInsufficientData, len(values), warmup+1)
	}
	return values[warmup:], times[warmup:], nil
}
