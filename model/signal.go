package model

import (
	"fmt"
	"time"
)

// SideType 信号方向，买入或卖出
type SideType string

var (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"
)

// SignalEvent 是检测器输出的买卖信号。
// Price 是触发当天的收盘价，Index 是触发K线在 PriceSeries 中的位置。
type SignalEvent struct {
	Time   time.Time
	Price  float64
	Side   SideType
	Index  int
	Source string // 产生信号的策略名称
}

func (s SignalEvent) String() string {
	return fmt.Sprintf("%s signal on %s at %.2f", s.Side, s.Time.Format(DateLayout), s.Price)
}
