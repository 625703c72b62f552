package exchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/rodrigo-brito/signalbot/model"
)

// TickerFeed 一个股票代码对应的 CSV 文件
type TickerFeed struct {
	Ticker string // 股票代码，如 AAPL
	File   string // CSV 文件路径
}

// CSVFeed 从本地 CSV 文件读取日线数据，实现 service.Feeder。
//
// 支持两种格式：
//   - 无表头，列顺序为 time,open,close,low,high,volume，time 为 Unix 时间戳
//   - 有表头，列名不区分大小写，例如 Date,Open,High,Low,Close,Adj Close,Volume
//
// 空值、null、NaN 会被读成 NaN，由 PriceSeries 在使用该字段时拒绝。
type CSVFeed struct {
	Feeds   map[string]TickerFeed
	Candles map[string][]model.Candle
}

var timeLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05-07:00",
}

// parseHeaders 返回列名到列索引的映射。第一列是数字时认为文件没有表头。
func parseHeaders(headers []string) (index map[string]int, hasHeader bool) {
	if _, err := strconv.ParseFloat(strings.TrimSpace(headers[0]), 64); err == nil {
		return map[string]int{
			"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
		}, false
	}

	index = make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h))
		switch name {
		case "date", "datetime", "timestamp":
			name = "time"
		case "adj close", "adj_close":
			continue
		}
		index[name] = i
	}

	return index, true
}

// NewCSVFeed 读取所有文件
func NewCSVFeed(feeds ...TickerFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		Feeds:   make(map[string]TickerFeed),
		Candles: make(map[string][]model.Candle),
	}

	for _, feed := range feeds {
		file, err := os.Open(feed.File)
		if err != nil {
			return nil, err
		}

		candles, err := ReadCandles(feed.Ticker, file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", feed.File, err)
		}

		csvFeed.Feeds[feed.Ticker] = feed
		csvFeed.Candles[feed.Ticker] = candles
	}

	return csvFeed, nil
}

// ReadCandles 从 reader 解析K线，不做排序和去重
func ReadCandles(ticker string, reader io.Reader) ([]model.Candle, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	lines, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s: empty csv", model.ErrInvalidInput, ticker)
	}

	headerMap, hasHeader := parseHeaders(lines[0])
	if hasHeader {
		lines = lines[1:]
	}
	for _, column := range []string{"time", "open", "close", "low", "high"} {
		if _, ok := headerMap[column]; !ok {
			return nil, fmt.Errorf("%w: %s: missing %s column", model.ErrInvalidInput, ticker, column)
		}
	}

	candles := make([]model.Candle, 0, len(lines))
	for n, line := range lines {
		candle, err := parseLine(ticker, line, headerMap)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

func parseLine(ticker string, line []string, headerMap map[string]int) (model.Candle, error) {
	get := func(column string) string {
		i, ok := headerMap[column]
		if !ok || i >= len(line) {
			return ""
		}
		return strings.TrimSpace(line[i])
	}

	timestamp, err := parseTime(get("time"))
	if err != nil {
		return model.Candle{}, err
	}

	candle := model.Candle{Ticker: ticker, Time: timestamp}
	prices := []struct {
		column string
		target *float64
	}{
		{"open", &candle.Open},
		{"close", &candle.Close},
		{"low", &candle.Low},
		{"high", &candle.High},
	}
	for _, p := range prices {
		if *p.target, err = parsePrice(get(p.column)); err != nil {
			return model.Candle{}, fmt.Errorf("%w: %s %q", model.ErrInvalidInput, p.column, get(p.column))
		}
	}

	// 成交量可选，缺失时为 0
	volume, err := parsePrice(get("volume"))
	if err != nil || volume < 0 {
		return model.Candle{}, fmt.Errorf("%w: volume %q", model.ErrInvalidInput, get("volume"))
	}
	if !math.IsNaN(volume) {
		candle.Volume = int64(volume)
	}

	return candle, nil
}

func parseTime(value string) (time.Time, error) {
	if unix, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", model.ErrInvalidInput, value)
}

func parsePrice(value string) (float64, error) {
	switch strings.ToLower(value) {
	case "", "null", "nan", "na":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(value, 64)
}

// Tickers 返回已加载的股票代码
func (c CSVFeed) Tickers() []string {
	tickers := lo.Keys(c.Candles)
	sort.Strings(tickers)
	return tickers
}

func (c CSVFeed) candles(ticker string) ([]model.Candle, error) {
	candles, ok := c.Candles[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: unknown ticker %s", model.ErrInvalidInput, ticker)
	}
	return candles, nil
}

// Limit 只保留每个股票最后 duration 时间内的K线
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for ticker, candles := range c.Candles {
		if len(candles) == 0 {
			continue
		}
		start := candles[len(candles)-1].Time.Add(-duration)
		c.Candles[ticker] = lo.Filter(candles, func(candle model.Candle, _ int) bool {
			return candle.Time.After(start)
		})
	}
	return c
}

func (c CSVFeed) CandlesByPeriod(ctx context.Context, ticker string, start, end time.Time) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candles, err := c.candles(ticker)
	if err != nil {
		return nil, err
	}

	return lo.Filter(candles, func(candle model.Candle, _ int) bool {
		if !start.IsZero() && candle.Time.Before(start) {
			return false
		}
		return end.IsZero() || !candle.Time.After(end)
	}), nil
}

func (c CSVFeed) CandlesByLimit(ctx context.Context, ticker string, limit int) ([]model.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candles, err := c.candles(ticker)
	if err != nil {
		return nil, err
	}
	if len(candles) < limit {
		return nil, fmt.Errorf("%w: %s has %d candles, %d requested", model.ErrInsufficientData, ticker,
			len(candles), limit)
	}

	result := make([]model.Candle, limit)
	copy(result, candles[len(candles)-limit:])
	return result, nil
}
