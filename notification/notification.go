// Package notification 在分析完成后把最近出现的买卖信号推送出去
package notification

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
)

// Notifier 发送一条文本消息
type Notifier interface {
	Notify(text string)
}

// SignalSubscriber 订阅分析结果，只转发最后 RecentBars 根K线内的信号。
// 同一个股票和策略的最后一个信号只发送一次，定时重复分析时不会重复通知。
type SignalSubscriber struct {
	sync.Mutex
	Notifier   Notifier
	RecentBars int

	notified map[string]time.Time // "TICKER strategy" -> 已通知的最后信号时间
}

func NewSignalSubscriber(notifier Notifier, recentBars int) *SignalSubscriber {
	if recentBars < 1 {
		recentBars = 1
	}
	return &SignalSubscriber{
		Notifier:   notifier,
		RecentBars: recentBars,
		notified:   make(map[string]time.Time),
	}
}

func (s *SignalSubscriber) OnResult(series *model.PriceSeries, result *strategy.Result) {
	text, ok := Message(series, result, s.RecentBars)
	if !ok {
		return
	}
	last, _ := result.LastEvent()

	s.Lock()
	if s.notified == nil {
		s.notified = make(map[string]time.Time)
	}
	key := series.Ticker() + " " + result.Strategy
	if notified, ok := s.notified[key]; ok && notified.Equal(last.Time) {
		s.Unlock()
		return
	}
	s.notified[key] = last.Time
	s.Unlock()

	s.Notifier.Notify(text)
}

// Message 生成通知内容，最近没有信号时返回 false
func Message(series *model.PriceSeries, result *strategy.Result, recentBars int) (string, bool) {
	first := series.Len() - recentBars
	lines := make([]string, 0)
	for _, event := range result.Events {
		if event.Index < first {
			continue
		}
		icon := "🟢"
		if event.Side == model.SideTypeSell {
			icon = "🔴"
		}
		lines = append(lines, fmt.Sprintf("%s %s", icon, event))
	}
	if len(lines) == 0 {
		return "", false
	}

	return fmt.Sprintf("*%s* %s\n%s", result.Ticker, result.Strategy, strings.Join(lines, "\n")), true
}
