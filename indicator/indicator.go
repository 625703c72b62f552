// Package indicator 实现技术指标的计算。
// 每个函数都是纯函数：输入一个 PriceSeries 和参数，返回与输入按索引对齐的新序列，不修改输入。
package indicator

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/rodrigo-brito/signalbot/model"
)

// defined 把原始数值全部包装为已定义的值
func defined(values []float64) []model.Value {
	return lo.Map(values, func(v float64, _ int) model.Value {
		return model.Defined(v)
	})
}

func checkPositive(name string, value int) error {
	if value < 1 {
		return fmt.Errorf("%w: %s must be >= 1, got %d", model.ErrInvalidParameter, name, value)
	}
	return nil
}

func checkLength(series *model.PriceSeries, name string, required int) error {
	if series.Len() < required {
		return fmt.Errorf("%w: %s needs %d bars, %s has %d", model.ErrInsufficientData, name, required,
			series.Ticker(), series.Len())
	}
	return nil
}
