package signalbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/report"
	"github.com/rodrigo-brito/signalbot/service"
	"github.com/rodrigo-brito/signalbot/strategy"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

const defaultConcurrency = 4

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04",
	})
}

// ResultSubscriber 在每个策略计算完成后收到通知，例如图表服务。
// 批量分析时会被多个 goroutine 同时调用。
type ResultSubscriber interface {
	OnResult(series *model.PriceSeries, result *strategy.Result)
}

// RunObserver 记录每个股票的加载和分析耗时，例如 Prometheus 指标
type RunObserver interface {
	ObserveRun(ticker string, duration time.Duration, err error)
}

// Analyzer 从 Feeder 读取日线数据，依次运行各个策略并保存结果
type Analyzer struct {
	sync.Mutex
	feeder      service.Feeder
	subscribers []ResultSubscriber
	observers   []RunObserver
	concurrency int
	progress    bool

	series  map[string]*model.PriceSeries
	results map[string][]*strategy.Result
}

type Option func(*Analyzer)

func NewAnalyzer(feeder service.Feeder, options ...Option) (*Analyzer, error) {
	if feeder == nil {
		return nil, fmt.Errorf("%w: missing feeder", model.ErrInvalidParameter)
	}

	analyzer := &Analyzer{
		feeder:      feeder,
		concurrency: defaultConcurrency,
		series:      make(map[string]*model.PriceSeries),
		results:     make(map[string][]*strategy.Result),
	}

	for _, option := range options {
		option(analyzer)
	}

	if analyzer.concurrency < 1 {
		return nil, fmt.Errorf("%w: concurrency must be positive, got %d", model.ErrInvalidParameter,
			analyzer.concurrency)
	}
	return analyzer, nil
}

func WithLogLevel(level log.Level) Option {
	return func(*Analyzer) {
		log.SetLevel(level)
	}
}

// WithConcurrency 批量分析时同时处理的股票数量
func WithConcurrency(concurrency int) Option {
	return func(analyzer *Analyzer) {
		analyzer.concurrency = concurrency
	}
}

// WithProgress 批量分析时在终端显示进度条
func WithProgress() Option {
	return func(analyzer *Analyzer) {
		analyzer.progress = true
	}
}

func WithResultSubscription(subscriber ResultSubscriber) Option {
	return func(analyzer *Analyzer) {
		analyzer.Subscribe(subscriber)
	}
}

func WithRunObserver(observer RunObserver) Option {
	return func(a *Analyzer) {
		a.observers = append(a.observers, observer)
	}
}

func (a *Analyzer) Subscribe(subscribers ...ResultSubscriber) {
	a.Lock()
	defer a.Unlock()
	a.subscribers = append(a.subscribers, subscribers...)
}

// Run 读取 [start, end] 内的数据并运行全部策略，零值时间表示不限制
func (a *Analyzer) Run(ctx context.Context, ticker string, start, end time.Time,
	strategies ...strategy.Strategy) (results []*strategy.Result, err error) {

	if len(strategies) == 0 {
		return nil, fmt.Errorf("%w: no strategy to run", model.ErrInvalidParameter)
	}

	started := time.Now()
	defer func() {
		for _, observer := range a.observers {
			observer.ObserveRun(ticker, time.Since(started), err)
		}
	}()

	candles, err := a.feeder.CandlesByPeriod(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	series, err := model.NewPriceSeries(ticker, candles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ticker, err)
	}

	return a.Evaluate(series, strategies...)
}

// Evaluate 在已加载的价格序列上运行策略
func (a *Analyzer) Evaluate(series *model.PriceSeries, strategies ...strategy.Strategy) ([]*strategy.Result, error) {
	results := make([]*strategy.Result, 0, len(strategies))
	for _, s := range strategies {
		result, err := s.Evaluate(series)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", series.Ticker(), s.Name(), err)
		}

		log.WithFields(log.Fields{
			"ticker":   series.Ticker(),
			"strategy": s.Name(),
			"buy":      len(result.Buys()),
			"sell":     len(result.Sells()),
		}).Info("analysis finished")

		results = append(results, result)
	}

	a.Lock()
	a.series[series.Ticker()] = series
	a.results[series.Ticker()] = results
	subscribers := a.subscribers
	a.Unlock()

	for _, result := range results {
		for _, subscriber := range subscribers {
			subscriber.OnResult(series, result)
		}
	}

	return results, nil
}

// RunBatch 并发分析多个股票，每个股票之间互不影响。
// 单个股票失败只记录日志并跳过；context 被取消时返回错误。
func (a *Analyzer) RunBatch(ctx context.Context, tickers []string, start, end time.Time,
	strategies ...strategy.Strategy) (map[string][]*strategy.Result, error) {

	tickers = lo.Uniq(tickers)

	var bar *progressbar.ProgressBar
	if a.progress {
		bar = progressbar.Default(int64(len(tickers)))
	}

	var mu sync.Mutex
	results := make(map[string][]*strategy.Result, len(tickers))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)
	for _, ticker := range tickers {
		ticker := ticker
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			tickerResults, err := a.Run(ctx, ticker, start, end, strategies...)
			if bar != nil {
				if barErr := bar.Add(1); barErr != nil {
					log.Warnf("update progressbar fail: %v", barErr)
				}
			}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.WithError(err).WithField("ticker", ticker).Warn("analysis skipped")
				return nil
			}

			mu.Lock()
			results[ticker] = tickerResults
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Tickers 返回已分析的股票，按字母排序
func (a *Analyzer) Tickers() []string {
	a.Lock()
	defer a.Unlock()
	tickers := lo.Keys(a.results)
	sort.Strings(tickers)
	return tickers
}

// Results 返回某个股票最近一次分析的结果
func (a *Analyzer) Results(ticker string) []*strategy.Result {
	a.Lock()
	defer a.Unlock()
	return a.results[ticker]
}

// Summary 输出所有股票的信号汇总和收益统计
func (a *Analyzer) Summary(w io.Writer) error {
	tickers := a.Tickers()

	a.Lock()
	all := make([]*strategy.Result, 0)
	series := make([]*model.PriceSeries, 0, len(tickers))
	for _, ticker := range tickers {
		all = append(all, a.results[ticker]...)
		series = append(series, a.series[ticker])
	}
	a.Unlock()

	report.Overview(w, all...)
	for _, s := range series {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := report.Returns(w, s); err != nil {
			if errors.Is(err, model.ErrInsufficientData) {
				log.WithField("ticker", s.Ticker()).Warn("not enough data for returns")
				continue
			}
			return err
		}
	}
	return nil
}

// SaveResults 把每个股票、每个策略的指标和信号写入 outputDir/<ticker>_<strategy>.csv
func (a *Analyzer) SaveResults(outputDir string) error {
	for _, ticker := range a.Tickers() {
		a.Lock()
		series, results := a.series[ticker], a.results[ticker]
		a.Unlock()

		for _, result := range results {
			outputFile := filepath.Join(outputDir, fmt.Sprintf("%s_%s.csv", ticker, result.Strategy))
			if err := saveResult(outputFile, series, result); err != nil {
				return err
			}
		}
	}
	return nil
}

func saveResult(outputFile string, series *model.PriceSeries, result *strategy.Result) error {
	file, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer file.Close()
	return report.WriteCSV(file, series, result)
}
