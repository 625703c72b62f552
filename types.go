package signalbot

import (
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
)

// 常用类型的别名，使用者只需要引入根包
type (
	Candle        = model.Candle
	PriceSeries   = model.PriceSeries
	DerivedSeries = model.DerivedSeries
	Series        = model.Series[float64]
	SideType      = model.SideType
	SignalEvent   = model.SignalEvent
	Strategy      = strategy.Strategy
	Result        = strategy.Result
)

var (
	SideTypeBuy  = model.SideTypeBuy
	SideTypeSell = model.SideTypeSell
)
