// Package report 把策略结果输出为终端表格、直方图和 CSV
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
	"github.com/rodrigo-brito/signalbot/tools/metrics"
)

const (
	// BootstrapSamples 计算置信区间时的重采样次数
	BootstrapSamples = 10000
	// Confidence 置信水平
	Confidence = 0.95
)

// Overview 每个股票、每个策略一行：信号数量和最近一次信号
func Overview(w io.Writer, results ...*strategy.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Ticker", "Strategy", "Buy", "Sell", "Last Signal"})
	table.SetAutoWrapText(false)
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	buys, sells := 0, 0
	for _, result := range results {
		last := "-"
		if event, ok := result.LastEvent(); ok {
			last = event.String()
		}
		buys += len(result.Buys())
		sells += len(result.Sells())
		table.Append([]string{
			result.Ticker,
			result.Strategy,
			strconv.Itoa(len(result.Buys())),
			strconv.Itoa(len(result.Sells())),
			last,
		})
	}

	table.SetFooter([]string{"", "TOTAL", strconv.Itoa(buys), strconv.Itoa(sells), ""})
	table.Render()
}

// Signals 列出结果中的全部信号
func Signals(w io.Writer, result *strategy.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Date", "Side", "Price", "Source"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, event := range result.Events {
		table.Append([]string{
			strconv.Itoa(event.Index),
			event.Time.Format(model.DateLayout),
			string(event.Side),
			strconv.FormatFloat(event.Price, 'f', 2, 64),
			event.Source,
		})
	}
	table.Render()

	_, err := fmt.Fprintf(w, "%s %s: %d signals\n", result.Ticker, result.Strategy, len(result.Events))
	return err
}

// Levels 输出斐波那契回撤位
func Levels(w io.Writer, ticker string, levels *indicator.FibonacciLevels) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Level", "Ratio", "Price"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, level := range levels.Levels {
		table.Append([]string{
			level.Label,
			strconv.FormatFloat(level.Ratio, 'f', 3, 64),
			strconv.FormatFloat(level.Price, 'f', 2, 64),
		})
	}

	table.Render()

	caption := fmt.Sprintf("%s: high %.2f, low %.2f", ticker, levels.High, levels.Low)
	if levels.Degenerate {
		caption += " (flat range)"
	}
	_, err := fmt.Fprintln(w, caption)
	return err
}

// Histogram 以百分比打印收益率分布
func Histogram(w io.Writer, returns []float64, bins int) error {
	if len(returns) == 0 {
		_, err := fmt.Fprintln(w, "no returns")
		return err
	}
	percents := lo.Map(returns, func(r float64, _ int) float64 {
		return r * 100
	})
	// 所有值相同时区间宽度为 0，无法分箱
	if lo.Min(percents) == lo.Max(percents) {
		_, err := fmt.Fprintf(w, "%.3f%% x %d\n", percents[0], len(percents))
		return err
	}
	hist := histogram.Hist(bins, percents)
	return histogram.Fprint(w, hist, histogram.Linear(10))
}

// Returns 输出日收益率的均值、年化波动率和均值的 bootstrap 置信区间
func Returns(w io.Writer, series *model.PriceSeries) error {
	closes, err := series.Closes()
	if err != nil {
		return err
	}

	returns := metrics.Returns(closes)
	interval, err := metrics.Bootstrap(returns, metrics.Mean, BootstrapSamples, Confidence)
	if err != nil {
		return err
	}

	total := closes.Last(0)/closes[0] - 1
	_, err = fmt.Fprintf(w, "------ RETURNS %s (%s - %s) -------\n", series.Ticker(),
		series.First().Format(model.DateLayout), series.LastTime().Format(model.DateLayout))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Total: %.2f%% | Daily mean: %.3f%% | Volatility: %.2f%%\n",
		total*100, metrics.Mean(returns)*100, metrics.Volatility(returns)*100)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Mean %.0f%% interval: %.3f%% ~ %.3f%% | StdDev: %.3f%%\n",
		Confidence*100, interval.Lower*100, interval.Upper*100, interval.StdDev*100)
	if err != nil {
		return err
	}

	return Histogram(w, returns, 15)
}

// WriteCSV 每根K线一行：日期、收盘价、各指标值以及当天的信号。
// 未定义的指标值写成空字符串，水平线不输出。
func WriteCSV(w io.Writer, series *model.PriceSeries, result *strategy.Result) error {
	metricsSeries := make([]*model.DerivedSeries, 0)
	for _, chartIndicator := range result.Indicators {
		for _, metric := range chartIndicator.Metrics {
			if metric.Style == strategy.StyleLevel {
				continue
			}
			if metric.Values.Len() != series.Len() {
				return fmt.Errorf("%w: %s has %d values, price series has %d bars", model.ErrInvalidInput,
					metric.Values.Name, metric.Values.Len(), series.Len())
			}
			metricsSeries = append(metricsSeries, metric.Values)
		}
	}

	signals := lo.Associate(result.Events, func(event model.SignalEvent) (int, model.SideType) {
		return event.Index, event.Side
	})

	writer := csv.NewWriter(w)
	header := []string{"date", "close"}
	for _, s := range metricsSeries {
		header = append(header, s.Name)
	}
	header = append(header, "signal")
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < series.Len(); i++ {
		candle := series.Candle(i)
		row := []string{
			candle.Time.Format(model.DateLayout),
			strconv.FormatFloat(candle.Close, 'f', -1, 64),
		}
		for _, s := range metricsSeries {
			value, ok := s.At(i)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(value, 'f', -1, 64))
		}
		row = append(row, string(signals[i]))
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
