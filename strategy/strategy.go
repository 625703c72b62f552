package strategy

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
)

// Strategy 把一组指标和信号规则组合在一起。
// Evaluate 是纯函数，同一个 Strategy 可以被多个 goroutine 同时用于不同的股票。
type Strategy interface {
	// Name 策略名称，如 ema-cross
	Name() string
	// Warmup 产生第一个有定义的指标值所需的K线数量
	Warmup() int
	// Validate 校验参数
	Validate() error
	// Evaluate 在整个价格序列上计算指标和信号
	Evaluate(series *model.PriceSeries) (*Result, error)
}

// Result 一次策略计算的输出，由调用方（报表、图表）完全持有
type Result struct {
	Strategy   string
	Ticker     string
	Indicators []ChartIndicator
	Events     []model.SignalEvent
	Levels     *indicator.FibonacciLevels
}

// Buys 返回全部买入信号
func (r Result) Buys() []model.SignalEvent {
	return r.side(model.SideTypeBuy)
}

// Sells 返回全部卖出信号
func (r Result) Sells() []model.SignalEvent {
	return r.side(model.SideTypeSell)
}

func (r Result) side(side model.SideType) []model.SignalEvent {
	return lo.Filter(r.Events, func(event model.SignalEvent, _ int) bool {
		return event.Side == side
	})
}

// LastEvent 返回最近的一个信号
func (r Result) LastEvent() (model.SignalEvent, bool) {
	if len(r.Events) == 0 {
		return model.SignalEvent{}, false
	}
	return r.Events[len(r.Events)-1], true
}

// Series 按名称查找结果中的指标序列
func (r Result) Series(name string) (*model.DerivedSeries, bool) {
	for _, chartIndicator := range r.Indicators {
		for _, metric := range chartIndicator.Metrics {
			if metric.Values.Name == name {
				return metric.Values, true
			}
		}
	}
	return nil, false
}

// 策略名称
const (
	NameEMACross  = "ema-cross"
	NameSMACross  = "sma-cross"
	NameRSI       = "rsi"
	NameMACD      = "macd"
	NameBollinger = "bollinger"
	NameFibonacci = "fibonacci"
)

// Defaults 返回所有策略的默认配置
func Defaults() map[string]Strategy {
	return map[string]Strategy{
		NameEMACross:  &MovingAverageCross{Kind: KindEMA, Short: 20, Long: 50},
		NameSMACross:  &MovingAverageCross{Kind: KindSMA, Short: 20, Long: 50},
		NameRSI:       &RSI{Period: indicator.DefaultRSIPeriod, Overbought: 70, Oversold: 30},
		NameMACD:      NewMACD(),
		NameBollinger: &Bollinger{Period: indicator.DefaultBollingerPeriod, K: indicator.DefaultBollingerK},
		NameFibonacci: &Fibonacci{Short: 10, Long: 30},
	}
}

// Names 返回所有策略名称，按字母排序
func Names() []string {
	names := lo.Keys(Defaults())
	sort.Strings(names)
	return names
}

// ByName 返回默认配置的策略
func ByName(name string) (Strategy, error) {
	s, ok := Defaults()[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q, available: %v", model.ErrInvalidParameter, name, Names())
	}
	return s, nil
}

func checkWindows(short, long int) error {
	if short < 1 || long < 1 {
		return fmt.Errorf("%w: windows must be positive, got short=%d long=%d", model.ErrInvalidParameter,
			short, long)
	}
	if short >= long {
		return fmt.Errorf("%w: short window (%d) must be lower than long window (%d)", model.ErrInvalidParameter,
			short, long)
	}
	return nil
}
