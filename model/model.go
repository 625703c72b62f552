package model

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout 日线数据使用的日期格式
const DateLayout = "2006-01-02"

// Candle 表示一根日线K线（价格柱）。
// 缺失的价格字段用 NaN 表示，由 PriceSeries 的访问方法负责拒绝。
type Candle struct {
	Ticker string    // 股票代码，如 AAPL
	Time   time.Time // 交易日
	Open   float64   // 开盘价
	Close  float64   // 收盘价
	Low    float64   // 最低价
	High   float64   // 最高价
	Volume int64     // 成交量，可选，指标计算不使用
}

// Empty 判断K线是否为零值
func (c Candle) Empty() bool {
	return c.Time.IsZero() && c.Close == 0 && c.Open == 0 && c.Volume == 0
}

// ToSlice 把K线转换成 CSV 行：date,open,close,low,high,volume。
// 缺失的价格输出为空字符串。
func (c Candle) ToSlice(precision int) []string {
	return []string{
		c.Time.Format(DateLayout),
		formatPrice(c.Open, precision),
		formatPrice(c.Close, precision),
		formatPrice(c.Low, precision),
		formatPrice(c.High, precision),
		strconv.FormatInt(c.Volume, 10),
	}
}

func formatPrice(v float64, precision int) string {
	if math.IsNaN(v) {
		return ""
	}
	// 按十进制四舍五入，避免 2.675 这类二进制误差
	return decimal.NewFromFloat(v).StringFixed(int32(precision))
}
