package plot

import (
	"bytes"
	"embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/StudioSol/set"
	"github.com/evanw/esbuild/pkg/api"
	log "github.com/sirupsen/logrus"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
)

var (
	//go:embed assets
	staticFiles embed.FS
)

// Chart 在浏览器中展示K线、策略指标和买卖信号。
// 通过 OnResult 订阅分析结果，可以在分析进行中同时提供服务。
type Chart struct {
	sync.Mutex
	port           int
	debug          bool
	tickers        *set.LinkedHashSetString           // 按加入顺序保存股票代码
	series         map[string]*model.PriceSeries      // 每个股票的价格序列
	results        map[string][]*strategy.Result      // 每个股票的策略结果
	eventsByTicker map[string]*set.LinkedHashSetINT64 // 出现过信号的K线时间戳，用于标记
	indicators     []Indicator                        // 自定义的附加指标
	scriptContent  string
	indexHTML      *template.Template
	handlers       map[string]http.Handler
	lastUpdate     time.Time
}

type Candle struct {
	Time    time.Time `json:"time"`
	Open    float64   `json:"open"`
	Close   float64   `json:"close"`
	High    float64   `json:"high"`
	Low     float64   `json:"low"`
	Volume  int64     `json:"volume"`
	Signals []Signal  `json:"signals"`
}

type Signal struct {
	Time     time.Time `json:"time"`
	Side     string    `json:"side"`
	Price    float64   `json:"price"`
	Strategy string    `json:"strategy"`
}

// Level 水平线，例如斐波那契回撤位
type Level struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

type indicatorMetric struct {
	Name   string      `json:"name"`
	Time   []time.Time `json:"time"`
	Values []float64   `json:"value"`
	Color  string      `json:"color"`
	Style  string      `json:"style"`
}

type plotIndicator struct {
	Name    string            `json:"name"`
	Overlay bool              `json:"overlay"`
	Metrics []indicatorMetric `json:"metrics"`
	Warmup  int               `json:"-"`
}

// Indicator 是额外画在图表上的指标，与策略无关
type Indicator interface {
	Name() string
	Overlay() bool
	Warmup() int
	Metrics() []IndicatorMetric
	Load(series *model.PriceSeries) error
}

type IndicatorMetric struct {
	Name   string
	Color  string
	Style  string
	Values model.Series[float64]
	Time   []time.Time
}

// NewMetric 把指标输出序列转换为图表数据，未定义的值不画
func NewMetric(name, color, style string, series *model.DerivedSeries) IndicatorMetric {
	metric := IndicatorMetric{Name: name, Color: color, Style: style}
	for _, point := range series.Defined() {
		metric.Time = append(metric.Time, point.Time)
		metric.Values = append(metric.Values, point.Value)
	}
	return metric
}

// OnResult 保存一次分析的结果，同一个策略的新结果替换旧结果
func (c *Chart) OnResult(series *model.PriceSeries, result *strategy.Result) {
	c.Lock()
	defer c.Unlock()

	ticker := series.Ticker()
	if _, ok := c.series[ticker]; !ok {
		c.tickers.Add(ticker)
	}
	c.series[ticker] = series

	results := c.results[ticker]
	replaced := false
	for i, previous := range results {
		if previous.Strategy == result.Strategy {
			results[i] = result
			replaced = true
			break
		}
	}
	if !replaced {
		results = append(results, result)
	}
	c.results[ticker] = results

	// 标记只来自当前保存的结果
	events := set.NewLinkedHashSetINT64()
	for _, r := range results {
		for _, event := range r.Events {
			events.Add(event.Time.Unix())
		}
	}
	c.eventsByTicker[ticker] = events
	c.lastUpdate = time.Now()
}

func (c *Chart) tickerList() []string {
	tickers := make([]string, 0)
	for ticker := range c.tickers.Iter() {
		tickers = append(tickers, ticker)
	}
	return tickers
}

func (c *Chart) indicatorsByTicker(ticker string) []plotIndicator {
	indicators := make([]plotIndicator, 0)
	series := c.series[ticker]

	for _, i := range c.indicators {
		if err := i.Load(series); err != nil {
			log.WithField("ticker", ticker).Warnf("chart: %s: %v", i.Name(), err)
			continue
		}

		plotted := plotIndicator{
			Name:    i.Name(),
			Overlay: i.Overlay(),
			Warmup:  i.Warmup(),
			Metrics: make([]indicatorMetric, 0),
		}
		for _, metric := range i.Metrics() {
			plotted.Metrics = append(plotted.Metrics, indicatorMetric{
				Name:   metric.Name,
				Values: metric.Values,
				Time:   metric.Time,
				Color:  metric.Color,
				Style:  metric.Style,
			})
		}
		indicators = append(indicators, plotted)
	}

	for _, result := range c.results[ticker] {
		for _, i := range result.Indicators {
			plotted := plotIndicator{
				Name:    i.GroupName,
				Overlay: i.Overlay,
				Warmup:  i.Warmup,
				Metrics: make([]indicatorMetric, 0),
			}
			if plotted.Name == "" {
				plotted.Name = result.Strategy
			}

			for _, metric := range i.Metrics {
				m := NewMetric(metric.Values.Name, metric.Color, string(metric.Style), metric.Values)
				if len(m.Values) == 0 {
					continue
				}
				plotted.Metrics = append(plotted.Metrics, indicatorMetric{
					Name:   m.Name,
					Time:   m.Time,
					Values: m.Values,
					Color:  m.Color,
					Style:  m.Style,
				})
			}
			indicators = append(indicators, plotted)
		}
	}
	return indicators
}

func (c *Chart) candlesByTicker(ticker string) []Candle {
	series := c.series[ticker]
	signals := make(map[int64][]Signal)
	for _, result := range c.results[ticker] {
		for _, event := range result.Events {
			signals[event.Time.Unix()] = append(signals[event.Time.Unix()], Signal{
				Time:     event.Time,
				Side:     string(event.Side),
				Price:    event.Price,
				Strategy: result.Strategy,
			})
		}
	}

	marked := make(map[int64]bool)
	for timestamp := range c.eventsByTicker[ticker].Iter() {
		marked[timestamp] = true
	}

	candles := make([]Candle, series.Len())
	for i, candle := range series.Candles() {
		candles[i] = Candle{
			Time:    candle.Time,
			Open:    candle.Open,
			Close:   candle.Close,
			High:    candle.High,
			Low:     candle.Low,
			Volume:  candle.Volume,
			Signals: make([]Signal, 0),
		}
		if marked[candle.Time.Unix()] {
			candles[i].Signals = signals[candle.Time.Unix()]
		}
	}
	return candles
}

func (c *Chart) levelsByTicker(ticker string) []Level {
	levels := make([]Level, 0)
	for _, result := range c.results[ticker] {
		if result.Levels == nil || result.Levels.Degenerate {
			continue
		}
		for _, level := range result.Levels.Levels {
			levels = append(levels, Level{Label: level.Label, Price: level.Price})
		}
		return levels
	}
	return levels
}

func (c *Chart) signalRowsByTicker(ticker string) [][]string {
	rows := make([][]string, 0)
	for _, result := range c.results[ticker] {
		for _, event := range result.Events {
			rows = append(rows, []string{
				event.Time.Format(model.DateLayout),
				result.Strategy,
				string(event.Side),
				strconv.FormatFloat(event.Price, 'f', 2, 64),
				strconv.Itoa(event.Index),
			})
		}
	}
	return rows
}

func (c *Chart) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c.Lock()
	defer c.Unlock()

	// 还没有任何分析结果时不可用
	if c.lastUpdate.IsZero() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(c.lastUpdate.Format(time.RFC3339)))
	if err != nil {
		log.Error(err)
	}
}

func (c *Chart) handleIndex(w http.ResponseWriter, r *http.Request) {
	c.Lock()
	tickers := c.tickerList()
	c.Unlock()

	ticker := r.URL.Query().Get("ticker")
	if ticker == "" && len(tickers) > 0 {
		http.Redirect(w, r, fmt.Sprintf("/?ticker=%s", tickers[0]), http.StatusFound)
		return
	}

	w.Header().Add("Content-Type", "text/html")
	err := c.indexHTML.Execute(w, map[string]interface{}{
		"ticker":  ticker,
		"tickers": tickers,
	})
	if err != nil {
		log.Error(err)
	}
}

func (c *Chart) handleData(w http.ResponseWriter, r *http.Request) {
	c.Lock()
	defer c.Unlock()

	ticker := r.URL.Query().Get("ticker")
	if _, ok := c.series[ticker]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-type", "text/json")
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"ticker":     ticker,
		"candles":    c.candlesByTicker(ticker),
		"indicators": c.indicatorsByTicker(ticker),
		"levels":     c.levelsByTicker(ticker),
	})
	if err != nil {
		log.Error(err)
	}
}

func (c *Chart) handleSignalHistory(w http.ResponseWriter, r *http.Request) {
	c.Lock()
	defer c.Unlock()

	ticker := r.URL.Query().Get("ticker")
	if _, ok := c.series[ticker]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	buffer := bytes.NewBuffer(nil)
	csvWriter := csv.NewWriter(buffer)
	err := csvWriter.Write([]string{"date", "strategy", "side", "price", "index"})
	if err != nil {
		log.Errorf("failed writing header file: %s", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err = csvWriter.WriteAll(c.signalRowsByTicker(ticker))
	if err != nil {
		log.Errorf("failed writing data: %s", err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment;filename=signals_"+ticker+".csv")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(buffer.Bytes()); err != nil {
		log.Errorf("failed writing response: %s", err.Error())
	}
}

// Handler 返回图表的 HTTP 路由
func (c *Chart) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/assets/", http.FileServer(http.FS(staticFiles)))
	mux.HandleFunc("/assets/chart.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-type", "application/javascript")
		fmt.Fprint(w, c.scriptContent)
	})
	mux.HandleFunc("/health", c.handleHealth)
	mux.HandleFunc("/history", c.handleSignalHistory)
	mux.HandleFunc("/data", c.handleData)
	mux.HandleFunc("/", c.handleIndex)
	for pattern, handler := range c.handlers {
		mux.Handle(pattern, handler)
	}
	return mux
}

// Start 启动 HTTP 服务，阻塞直到服务退出
func (c *Chart) Start() error {
	fmt.Printf("Chart available at http://localhost:%d\n", c.port)
	return http.ListenAndServe(fmt.Sprintf(":%d", c.port), c.Handler())
}

type Option func(*Chart)

func WithPort(port int) Option {
	return func(chart *Chart) {
		chart.port = port
	}
}

// WithDebug 不压缩前端脚本
func WithDebug() Option {
	return func(chart *Chart) {
		chart.debug = true
	}
}

// WithHandler 在图表服务上挂载额外的路由，例如 /metrics
func WithHandler(pattern string, handler http.Handler) Option {
	return func(chart *Chart) {
		chart.handlers[pattern] = handler
	}
}

func WithCustomIndicators(indicators ...Indicator) Option {
	return func(chart *Chart) {
		chart.indicators = indicators
	}
}

func NewChart(options ...Option) (*Chart, error) {
	chart := &Chart{
		port:           8080,
		tickers:        set.NewLinkedHashSetString(),
		series:         make(map[string]*model.PriceSeries),
		results:        make(map[string][]*strategy.Result),
		eventsByTicker: make(map[string]*set.LinkedHashSetINT64),
		handlers:       make(map[string]http.Handler),
	}

	for _, option := range options {
		option(chart)
	}

	chartJS, err := staticFiles.ReadFile("assets/chart.js")
	if err != nil {
		return nil, err
	}

	chart.indexHTML, err = template.ParseFS(staticFiles, "assets/chart.html")
	if err != nil {
		return nil, err
	}

	// 调试模式下保留原始格式，方便在浏览器里排查
	transpileChartJS := api.Transform(string(chartJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !chart.debug,
		MinifyIdentifiers: !chart.debug,
		MinifyWhitespace:  !chart.debug,
	})
	if len(transpileChartJS.Errors) > 0 {
		return nil, fmt.Errorf("chart script failed with: %v", transpileChartJS.Errors)
	}
	chart.scriptContent = string(transpileChartJS.Code)

	return chart, nil
}
