package strategy

import (
	"fmt"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/signal"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

// MACDReference MACD 线与哪条线比较
type MACDReference string

const (
	ReferenceSignal MACDReference = "signal" // MACD 线穿越信号线
	ReferenceZero   MACDReference = "zero"   // MACD 线穿越零轴
)

// MACD 策略。原来各个脚本里的几种写法在这里都是参数：
// 参考线（信号线或零轴）、是否要求零轴方向过滤、是否输出柱状图。
type MACD struct {
	Fast      int
	Slow      int
	Signal    int
	Reference MACDReference
	// ZeroFilter 只在零轴下方买入、零轴上方卖出，仅用于信号线交叉
	ZeroFilter bool
	Histogram  bool
}

// NewMACD 返回 12/26/9、信号线交叉并开启零轴过滤的默认配置
func NewMACD() *MACD {
	return &MACD{
		Fast:       indicator.DefaultMACDFast,
		Slow:       indicator.DefaultMACDSlow,
		Signal:     indicator.DefaultMACDSignal,
		Reference:  ReferenceSignal,
		ZeroFilter: true,
		Histogram:  true,
	}
}

func (m MACD) Name() string {
	return NameMACD
}

func (m MACD) Warmup() int {
	return 1
}

func (m MACD) Validate() error {
	if m.Fast < 1 || m.Slow < 1 || m.Signal < 1 {
		return fmt.Errorf("%w: macd spans must be positive, got %d/%d/%d", model.ErrInvalidParameter,
			m.Fast, m.Slow, m.Signal)
	}
	if m.Fast >= m.Slow {
		return fmt.Errorf("%w: macd fast span (%d) must be lower than slow span (%d)", model.ErrInvalidParameter,
			m.Fast, m.Slow)
	}
	switch m.Reference {
	case ReferenceSignal:
	case ReferenceZero:
		if m.ZeroFilter {
			// 穿越零轴时 MACD 必然在零轴另一侧，过滤条件永远不成立
			return fmt.Errorf("%w: zero filter cannot be used with the zero line reference",
				model.ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("%w: unknown macd reference %q", model.ErrInvalidParameter, m.Reference)
	}
	return nil
}

func (m MACD) Evaluate(series *model.PriceSeries) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	macd, err := indicator.MACD(series, m.Fast, m.Slow, m.Signal)
	if err != nil {
		return nil, err
	}

	opts := []signal.Option{signal.WithSource(m.Name())}
	if m.ZeroFilter {
		opts = append(opts, signal.WithFilter(signal.ZeroSide))
	}

	var events []model.SignalEvent
	if m.Reference == ReferenceZero {
		events, err = signal.CrossoverLevel(series, macd.MACD, 0, opts...)
	} else {
		events, err = signal.Crossover(series, macd.MACD, macd.Signal, opts...)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"ticker":    series.Ticker(),
		"strategy":  m.Name(),
		"reference": m.Reference,
		"events":    len(events),
	}).Debug("macd evaluated")

	metrics := []IndicatorMetric{
		{Name: "MACD", Color: "blue", Style: StyleLine, Values: macd.MACD},
		{Name: "MACDSignal", Color: "red", Style: StyleLine, Values: macd.Signal},
	}
	if m.Histogram {
		metrics = append(metrics, IndicatorMetric{
			Name: "MACDHist", Color: "gray", Style: StyleBar, Values: macd.Histogram,
		})
	}

	return &Result{
		Strategy: m.Name(),
		Ticker:   series.Ticker(),
		Events:   events,
		Indicators: []ChartIndicator{
			{
				GroupName: fmt.Sprintf("MACD(%d, %d, %d)", m.Fast, m.Slow, m.Signal),
				Warmup:    m.Warmup(),
				Metrics:   metrics,
			},
		},
	}, nil
}
