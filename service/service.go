package service

import (
	"context"
	"time"

	"github.com/rodrigo-brito/signalbot/model"
)

//go:generate mockery --name=Feeder --output=../mocks

// Feeder 提供历史日线数据，是引擎唯一的输入来源。
// 实现可以是本地 CSV 文件，也可以是行情服务商的网络接口。
type Feeder interface {
	// CandlesByPeriod 返回 [start, end] 内按日期排序的K线，零值表示不限制
	CandlesByPeriod(ctx context.Context, ticker string, start, end time.Time) ([]model.Candle, error)
	// CandlesByLimit 返回最近 limit 根K线
	CandlesByLimit(ctx context.Context, ticker string, limit int) ([]model.Candle, error)
}
