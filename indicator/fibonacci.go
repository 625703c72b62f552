package indicator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/rodrigo-brito/signalbot/model"
)

// FibonacciLevel 一条回撤水平线
type FibonacciLevel struct {
	Label string
	Ratio float64
	Price float64
}

// FibonacciLevels 由区间最高价和最低价计算的静态回撤位，不是时间序列
type FibonacciLevels struct {
	High   float64
	Low    float64
	Levels []FibonacciLevel
	// Degenerate 表示最高价等于最低价，所有水平线重合，没有参考意义
	Degenerate bool
}

var fibonacciRatios = []struct {
	label string
	ratio float64
}{
	{"0%", 0},
	{"23.6%", 0.236},
	{"38.2%", 0.382},
	{"50%", 0.5},
	{"61.8%", 0.618},
	{"100%", 1},
}

// Fibonacci 计算回撤位 level(r) = high - r*(high-low)，100% 直接取 low。
// 少于 2 根K线时返回 ErrInsufficientData。
func Fibonacci(series *model.PriceSeries) (*FibonacciLevels, error) {
	if err := checkLength(series, "fibonacci retracement", 2); err != nil {
		return nil, err
	}

	highs, err := series.Highs()
	if err != nil {
		return nil, err
	}
	lows, err := series.Lows()
	if err != nil {
		return nil, err
	}

	high, low := floats.Max(highs), floats.Min(lows)
	if low > high {
		return nil, fmt.Errorf("%w: %s: lowest low %v is above highest high %v", model.ErrInvalidInput,
			series.Ticker(), low, high)
	}

	levels := &FibonacciLevels{
		High:       high,
		Low:        low,
		Degenerate: high == low,
		Levels:     make([]FibonacciLevel, 0, len(fibonacciRatios)),
	}

	for _, r := range fibonacciRatios {
		price := high - r.ratio*(high-low)
		if r.ratio == 1 {
			price = low
		}
		levels.Levels = append(levels.Levels, FibonacciLevel{Label: r.label, Ratio: r.ratio, Price: price})
	}

	return levels, nil
}

// Level 按标签查找回撤位，如 "61.8%"
func (f FibonacciLevels) Level(label string) (float64, bool) {
	for _, level := range f.Levels {
		if level.Label == label {
			return level.Price, true
		}
	}
	return 0, false
}
