// Package signal 把两条对齐的指标序列（或一条序列和一个常数）转换成离散的买卖信号。
//
// 核心是一个按符号变化驱动的状态机：
//
//	prevSign ∈ {Undefined, Negative, Zero, Positive}
//
// 当 a-b 的符号变为正且上一个符号为负或零时产生买入信号，变为负且上一个符号为正或零时产生卖出信号。
// 恰好为零时不产生信号，由下一次严格的穿越来决定方向。所有使用者（均线交叉、MACD 与信号线、
// MACD 与零轴）共用同一套规则。
package signal

import (
	"fmt"

	"github.com/rodrigo-brito/signalbot/model"
)

// Sign 是差值的符号状态
type Sign int

const (
	SignUndefined Sign = iota
	SignNegative
	SignZero
	SignPositive
)

func (s Sign) String() string {
	switch s {
	case SignNegative:
		return "negative"
	case SignZero:
		return "zero"
	case SignPositive:
		return "positive"
	}
	return "undefined"
}

func signOf(diff float64) Sign {
	switch {
	case diff > 0:
		return SignPositive
	case diff < 0:
		return SignNegative
	}
	return SignZero
}

// Filter 是额外的过滤条件，只在核心穿越条件成立时才会被调用。
// a 和 b 是触发位置两条序列的值，返回 false 时丢弃这个信号。
type Filter func(side model.SideType, a, b float64) bool

// ZeroSide 是 MACD 常用的过滤条件：只在零轴下方买入，只在零轴上方卖出
func ZeroSide(side model.SideType, a, _ float64) bool {
	if side == model.SideTypeBuy {
		return a < 0
	}
	return a > 0
}

type options struct {
	filters []Filter
	source  string
}

// Option 配置检测器
type Option func(*options)

// WithFilter 添加过滤条件，多个过滤条件需要同时满足
func WithFilter(filter Filter) Option {
	return func(o *options) {
		o.filters = append(o.filters, filter)
	}
}

// WithSource 设置信号的来源名称，写入 SignalEvent.Source
func WithSource(source string) Option {
	return func(o *options) {
		o.source = source
	}
}

// operand 是检测器的一个输入，序列或者常数
type operand func(i int) (float64, bool)

func seriesOperand(series *model.DerivedSeries) operand {
	return series.At
}

func constantOperand(value float64) operand {
	return func(int) (float64, bool) {
		return value, true
	}
}

// Crossover 检测 a 与 b 的交叉。a、b 必须与 prices 等长。
func Crossover(prices *model.PriceSeries, a, b *model.DerivedSeries, opts ...Option) ([]model.SignalEvent, error) {
	if err := checkAligned(prices, a); err != nil {
		return nil, err
	}
	if err := checkAligned(prices, b); err != nil {
		return nil, err
	}
	return detect(prices, seriesOperand(a), seriesOperand(b), opts)
}

// CrossoverLevel 检测 a 与常数 level 的交叉，例如 MACD 穿越零轴
func CrossoverLevel(prices *model.PriceSeries, a *model.DerivedSeries, level float64,
	opts ...Option) ([]model.SignalEvent, error) {

	if err := checkAligned(prices, a); err != nil {
		return nil, err
	}
	return detect(prices, seriesOperand(a), constantOperand(level), opts)
}

func detect(prices *model.PriceSeries, a, b operand, opts []Option) ([]model.SignalEvent, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	closes, err := prices.Closes()
	if err != nil {
		return nil, err
	}

	events := make([]model.SignalEvent, 0)
	prev := SignUndefined
	for i := 0; i < prices.Len(); i++ {
		va, okA := a(i)
		vb, okB := b(i)
		if !okA || !okB {
			prev = SignUndefined
			continue
		}

		current := signOf(va - vb)
		if side, ok := transition(prev, current); ok && o.accept(side, va, vb) {
			events = append(events, model.SignalEvent{
				Time:   prices.Time(i),
				Price:  closes[i],
				Side:   side,
				Index:  i,
				Source: o.source,
			})
		}
		prev = current
	}

	return events, nil
}

// transition 返回从 prev 到 current 时应产生的信号
func transition(prev, current Sign) (model.SideType, bool) {
	if prev == SignUndefined {
		return "", false
	}
	switch {
	case current == SignPositive && (prev == SignNegative || prev == SignZero):
		return model.SideTypeBuy, true
	case current == SignNegative && (prev == SignPositive || prev == SignZero):
		return model.SideTypeSell, true
	}
	return "", false
}

func (o options) accept(side model.SideType, a, b float64) bool {
	for _, filter := range o.filters {
		if !filter(side, a, b) {
			return false
		}
	}
	return true
}

// Region 检测进入超买或超卖区域：
// a[i] >= overbought 且 a[i-1] < overbought 时卖出，a[i] <= oversold 且 a[i-1] > oversold 时买入。
func Region(prices *model.PriceSeries, a *model.DerivedSeries, overbought, oversold float64,
	opts ...Option) ([]model.SignalEvent, error) {

	if oversold >= overbought {
		return nil, fmt.Errorf("%w: oversold (%v) must be lower than overbought (%v)",
			model.ErrInvalidParameter, oversold, overbought)
	}
	if err := checkAligned(prices, a); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	closes, err := prices.Closes()
	if err != nil {
		return nil, err
	}

	events := make([]model.SignalEvent, 0)
	for i := 1; i < a.Len(); i++ {
		prev, okPrev := a.At(i - 1)
		current, ok := a.At(i)
		if !okPrev || !ok {
			continue
		}

		var side model.SideType
		switch {
		case current >= overbought && prev < overbought:
			side = model.SideTypeSell
		case current <= oversold && prev > oversold:
			side = model.SideTypeBuy
		default:
			continue
		}

		threshold := oversold
		if side == model.SideTypeSell {
			threshold = overbought
		}
		if !o.accept(side, current, threshold) {
			continue
		}

		events = append(events, model.SignalEvent{
			Time:   prices.Time(i),
			Price:  closes[i],
			Side:   side,
			Index:  i,
			Source: o.source,
		})
	}

	return events, nil
}

func checkAligned(prices *model.PriceSeries, series *model.DerivedSeries) error {
	if series == nil {
		return fmt.Errorf("%w: missing series", model.ErrInvalidInput)
	}
	if series.Len() != prices.Len() || len(series.Time) != prices.Len() {
		return fmt.Errorf("%w: %s has %d values, price series has %d bars", model.ErrInvalidInput,
			series.Name, series.Len(), prices.Len())
	}
	for i, t := range series.Time {
		if !t.Equal(prices.Time(i)) {
			return fmt.Errorf("%w: %s is not aligned with the price series at index %d", model.ErrInvalidInput,
				series.Name, i)
		}
	}
	return nil
}
