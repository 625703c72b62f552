// Package download 把 Feeder 中一段时间的日线数据导出为标准格式的 CSV：
// date,open,close,low,high,volume，可以直接被 exchange.CSVFeed 读取。
package download

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/service"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

// batchSize 每次向 Feeder 请求的自然日数量
const batchSize = 500

const defaultPrecision = 4

type Downloader struct {
	feeder service.Feeder
}

func NewDownloader(feeder service.Feeder) Downloader {
	return Downloader{
		feeder: feeder,
	}
}

// Parameters 导出区间，零值表示不限制
type Parameters struct {
	Start     time.Time
	End       time.Time
	Precision int
}

type Option func(*Parameters)

func WithInterval(start, end time.Time) Option {
	return func(parameters *Parameters) {
		parameters.Start = start
		parameters.End = end
	}
}

// WithDays 导出截止到 end（零值为今天）的最近 days 天
func WithDays(days int, end time.Time) Option {
	return func(parameters *Parameters) {
		if end.IsZero() {
			end = time.Now().UTC()
		}
		parameters.End = end
		parameters.Start = end.AddDate(0, 0, -days)
	}
}

// WithPrecision 价格保留的小数位数
func WithPrecision(precision int) Option {
	return func(parameters *Parameters) {
		parameters.Precision = precision
	}
}

// weekdays 返回区间内的工作日数量，只用于估算进度
func weekdays(start, end time.Time) int {
	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			count++
		}
	}
	return count
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Download 把 ticker 的数据写入 output
func (d Downloader) Download(ctx context.Context, ticker string, output string, options ...Option) error {
	parameters := &Parameters{Precision: defaultPrecision}
	for _, option := range options {
		option(parameters)
	}

	if !parameters.Start.IsZero() {
		parameters.Start = truncateDay(parameters.Start)
	}
	if !parameters.End.IsZero() {
		parameters.End = truncateDay(parameters.End)
	}
	if !parameters.Start.IsZero() && !parameters.End.IsZero() && parameters.End.Before(parameters.Start) {
		return fmt.Errorf("%w: end %s is before start %s", model.ErrInvalidParameter,
			parameters.End.Format(model.DateLayout), parameters.Start.Format(model.DateLayout))
	}

	recordFile, err := os.Create(output)
	if err != nil {
		return err
	}
	defer recordFile.Close()

	writer := csv.NewWriter(recordFile)
	err = writer.Write([]string{
		"date", "open", "close", "low", "high", "volume",
	})
	if err != nil {
		return err
	}

	// 区间不完整时一次取完
	if parameters.Start.IsZero() || parameters.End.IsZero() {
		candles, err := d.feeder.CandlesByPeriod(ctx, ticker, parameters.Start, parameters.End)
		if err != nil {
			return err
		}
		if err := writeCandles(writer, candles, parameters.Precision); err != nil {
			return err
		}
		writer.Flush()
		log.Infof("%s: %d candles saved to %s", ticker, len(candles), output)
		return writer.Error()
	}

	expected := weekdays(parameters.Start, parameters.End)
	log.Infof("Downloading ~%d candles for %s", expected, ticker)
	progressBar := progressbar.Default(int64(expected))

	total := 0
	for begin := parameters.Start; !begin.After(parameters.End); begin = begin.AddDate(0, 0, batchSize) {
		end := begin.AddDate(0, 0, batchSize).Add(-time.Second)
		if end.After(parameters.End) {
			end = parameters.End
		}

		candles, err := d.feeder.CandlesByPeriod(ctx, ticker, begin, end)
		if err != nil {
			return err
		}
		if err := writeCandles(writer, candles, parameters.Precision); err != nil {
			return err
		}

		total += len(candles)
		if err = progressBar.Add(len(candles)); err != nil {
			log.Warnf("update progresbar fail: %s", err.Error())
		}
	}

	if err = progressBar.Close(); err != nil {
		log.Warnf("close progresbar fail: %s", err.Error())
	}

	// 节假日也没有数据，所以缺失只作为提示
	if missing := expected - total; missing > 0 {
		log.Debugf("%s: %d weekdays without data", ticker, missing)
	}

	writer.Flush()
	log.Infof("%s: %d candles saved to %s", ticker, total, output)
	return writer.Error()
}

func writeCandles(writer *csv.Writer, candles []model.Candle, precision int) error {
	for _, candle := range candles {
		if err := writer.Write(candle.ToSlice(precision)); err != nil {
			return err
		}
	}
	return nil
}
