package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/xhit/go-str2duration/v2"

	"github.com/rodrigo-brito/signalbot"
	"github.com/rodrigo-brito/signalbot/config"
	"github.com/rodrigo-brito/signalbot/download"
	"github.com/rodrigo-brito/signalbot/exchange"
	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/monitor"
	"github.com/rodrigo-brito/signalbot/notification"
	"github.com/rodrigo-brito/signalbot/plot"
	"github.com/rodrigo-brito/signalbot/report"
	"github.com/rodrigo-brito/signalbot/scheduler"
	"github.com/rodrigo-brito/signalbot/strategy"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

var (
	fileFlag = &cli.StringSliceFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "CSV with daily candles, eg. ./aapl.csv or AAPL=./data/aapl.csv",
		Required: true,
	}
	startFlag = &cli.TimestampFlag{
		Name:    "start",
		Aliases: []string{"s"},
		Usage:   "eg. 2021-12-01",
		Layout:  model.DateLayout,
	}
	endFlag = &cli.TimestampFlag{
		Name:    "end",
		Aliases: []string{"e"},
		Usage:   "eg. 2022-12-31",
		Layout:  model.DateLayout,
	}
	lastFlag = &cli.StringFlag{
		Name:    "last",
		Aliases: []string{"l"},
		Usage:   "only the last period of each file, eg. 60d, 26w",
	}
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML file with strategy parameters",
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "debug, info, warn or error",
		EnvVars: []string{config.EnvLogLevel},
	}
	strategyFlag = &cli.StringSliceFlag{
		Name:    "strategy",
		Aliases: []string{"t"},
		Usage:   fmt.Sprintf("one of %s (default all)", strings.Join(strategy.Names(), ", ")),
	}
	serveFlag = &cli.BoolFlag{
		Name:  "serve",
		Usage: "start the chart server, with Prometheus metrics on /metrics",
	}
	portFlag = &cli.IntFlag{
		Name:  "port",
		Usage: "chart server port",
		Value: 8080,
	}
)

func main() {
	app := &cli.App{
		Name:     "signalbot",
		HelpName: "signalbot",
		Usage:    "Technical indicators and buy/sell signals for daily stock data",
		Commands: []*cli.Command{
			{
				Name:     "analyze",
				HelpName: "analyze",
				Usage:    "Run strategies over one or more tickers and print the signals",
				Flags: []cli.Flag{
					fileFlag, startFlag, endFlag, lastFlag, configFlag, logLevelFlag, strategyFlag, serveFlag, portFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "directory to save indicators and signals as CSV",
					},
				},
				Action: analyze,
			},
			{
				Name:     "watch",
				HelpName: "watch",
				Usage:    "Reload the CSV files and analyze them on a cron schedule, sending notifications",
				Flags: []cli.Flag{
					fileFlag, lastFlag, configFlag, logLevelFlag, strategyFlag, serveFlag, portFlag,
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "cron expression with seconds, eg. \"0 0 18 * * 1-5\" or \"@every 1h\"",
					},
					&cli.BoolFlag{
						Name:  "now",
						Usage: "run once before waiting for the schedule",
					},
				},
				Action: watch,
			},
			{
				Name:     "levels",
				HelpName: "levels",
				Usage:    "Print Fibonacci retracement levels",
				Flags:    []cli.Flag{fileFlag, startFlag, endFlag, lastFlag, logLevelFlag},
				Action:   levels,
			},
			{
				Name:     "download",
				HelpName: "download",
				Usage:    "Normalize a CSV file into date,open,close,low,high,volume",
				Flags: []cli.Flag{
					fileFlag, startFlag, endFlag, logLevelFlag,
					&cli.IntFlag{
						Name:    "days",
						Aliases: []string{"d"},
						Usage:   "eg. 100, counted back from --end or today",
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "eg. ./aapl.csv",
						Required: true,
					},
				},
				Action: downloadData,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if last := c.String("last"); last != "" {
		cfg.Window = last
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.Level()
	log.SetLevel(level)
	return cfg, nil
}

// tickerFeeds 解析 --file，未指定代码时取文件名，例如 ./data/aapl.csv 为 AAPL
func tickerFeeds(files []string) []exchange.TickerFeed {
	feeds := make([]exchange.TickerFeed, 0, len(files))
	for _, file := range files {
		if ticker, path, ok := strings.Cut(file, "="); ok {
			feeds = append(feeds, exchange.TickerFeed{Ticker: strings.ToUpper(ticker), File: path})
			continue
		}
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		feeds = append(feeds, exchange.TickerFeed{Ticker: strings.ToUpper(name), File: file})
	}
	return feeds
}

func loadFeed(c *cli.Context, window string) (*exchange.CSVFeed, error) {
	feed, err := exchange.NewCSVFeed(tickerFeeds(c.StringSlice("file"))...)
	if err != nil {
		return nil, err
	}
	if window != "" {
		duration, err := str2duration.ParseDuration(window)
		if err != nil {
			return nil, fmt.Errorf("%w: --last %q: %s", model.ErrInvalidParameter, window, err)
		}
		feed.Limit(duration)
	}
	return feed, nil
}

func interval(c *cli.Context) (start, end time.Time) {
	if value := c.Timestamp("start"); value != nil {
		start = *value
	}
	if value := c.Timestamp("end"); value != nil {
		end = *value
	}
	return start, end
}

// session 是一次分析共用的配置、策略和订阅者
type session struct {
	cfg        *config.Config
	strategies []strategy.Strategy
	options    []signalbot.Option
	chart      *plot.Chart
	telegram   *notification.Telegram
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	strategies, err := cfg.StrategiesByName(c.StringSlice("strategy")...)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:        cfg,
		strategies: strategies,
		options:    []signalbot.Option{signalbot.WithConcurrency(cfg.Concurrency)},
	}

	if c.Bool("serve") {
		metrics := monitor.NewMetrics()
		s.chart, err = plot.NewChart(
			plot.WithPort(c.Int("port")),
			plot.WithHandler("/metrics", metrics.Handler()),
		)
		if err != nil {
			return nil, err
		}
		s.options = append(s.options,
			signalbot.WithResultSubscription(s.chart),
			signalbot.WithResultSubscription(metrics),
			signalbot.WithRunObserver(metrics),
		)
	}

	subscribers, telegram, err := notifiers(cfg.Notification)
	if err != nil {
		return nil, err
	}
	s.telegram = telegram
	for _, subscriber := range subscribers {
		s.options = append(s.options, signalbot.WithResultSubscription(subscriber))
	}

	return s, nil
}

// run 重新读取 CSV 文件并分析全部股票
func (s *session) run(c *cli.Context) (*signalbot.Analyzer, error) {
	feed, err := loadFeed(c, s.cfg.Window)
	if err != nil {
		return nil, err
	}

	options := s.options
	tickers := feed.Tickers()
	if len(tickers) > 1 {
		options = append(options[:len(options):len(options)], signalbot.WithProgress())
	}

	analyzer, err := signalbot.NewAnalyzer(feed, options...)
	if err != nil {
		return nil, err
	}

	start, end := interval(c)
	if _, err := analyzer.RunBatch(c.Context, tickers, start, end, s.strategies...); err != nil {
		return nil, err
	}
	return analyzer, nil
}

func analyze(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	analyzer, err := s.run(c)
	if err != nil {
		return err
	}

	for _, ticker := range analyzer.Tickers() {
		for _, result := range analyzer.Results(ticker) {
			if err := report.Signals(os.Stdout, result); err != nil {
				return err
			}
			if result.Levels != nil {
				if err := report.Levels(os.Stdout, ticker, result.Levels); err != nil {
					return err
				}
			}
		}
	}

	if err := analyzer.Summary(os.Stdout); err != nil {
		return err
	}

	if output := c.String("output"); output != "" {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return err
		}
		if err := analyzer.SaveResults(output); err != nil {
			return err
		}
	}

	if s.chart != nil {
		return s.chart.Start()
	}
	return nil
}

// watch 按配置的 cron 表达式定时分析，直到收到退出信号
func watch(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	spec := s.cfg.Schedule
	if value := c.String("schedule"); value != "" {
		spec = value
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	c.Context = ctx

	jobs, err := scheduler.New(ctx, spec, func(context.Context) error {
		analyzer, err := s.run(c)
		if err != nil {
			return err
		}
		return analyzer.Summary(os.Stdout)
	})
	if err != nil {
		return err
	}

	if s.telegram != nil {
		s.telegram.Start()
		defer s.telegram.Stop()
	}
	if s.chart != nil {
		go func() {
			if err := s.chart.Start(); err != nil {
				log.WithError(err).Error("chart server stopped")
			}
		}()
	}

	if c.Bool("now") {
		// 首次分析失败不退出，继续等待下一次调度
		if err := jobs.RunNow(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Warn("first analysis failed, waiting for the next scheduled run")
		}
	}

	jobs.Start()
	<-ctx.Done()
	jobs.Stop()
	return nil
}

// notifiers 根据配置创建通知订阅者
func notifiers(cfg config.Notification) ([]signalbot.ResultSubscriber, *notification.Telegram, error) {
	var telegram *notification.Telegram
	subscribers := make([]signalbot.ResultSubscriber, 0)
	if cfg.TelegramEnabled() {
		var err error
		telegram, err = notification.NewTelegram(cfg.Telegram.Token, cfg.Telegram.Users)
		if err != nil {
			return nil, nil, err
		}
		subscribers = append(subscribers, telegram, notification.NewSignalSubscriber(telegram, cfg.RecentBars))
	}
	if cfg.MailEnabled() {
		mail := notification.NewMail(notification.MailParams{
			SMTPServerPort:    cfg.Mail.Port,
			SMTPServerAddress: cfg.Mail.Server,
			To:                cfg.Mail.To,
			From:              cfg.Mail.From,
			Password:          cfg.Mail.Password,
		})
		subscribers = append(subscribers, notification.NewSignalSubscriber(mail, cfg.RecentBars))
	}
	return subscribers, telegram, nil
}

func levels(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	feed, err := loadFeed(c, cfg.Window)
	if err != nil {
		return err
	}

	start, end := interval(c)
	for _, ticker := range feed.Tickers() {
		candles, err := feed.CandlesByPeriod(c.Context, ticker, start, end)
		if err != nil {
			return err
		}
		series, err := model.NewPriceSeries(ticker, candles)
		if err != nil {
			return fmt.Errorf("%s: %w", ticker, err)
		}
		fibonacci, err := indicator.Fibonacci(series)
		if err != nil {
			return fmt.Errorf("%s: %w", ticker, err)
		}
		if err := report.Levels(os.Stdout, ticker, fibonacci); err != nil {
			return err
		}
	}
	return nil
}

func downloadData(c *cli.Context) error {
	if _, err := loadConfig(c); err != nil {
		return err
	}

	feed, err := loadFeed(c, "")
	if err != nil {
		return err
	}
	tickers := feed.Tickers()
	if len(tickers) != 1 {
		return fmt.Errorf("%w: download expects a single --file", model.ErrInvalidParameter)
	}

	var options []download.Option
	start, end := interval(c)
	if days := c.Int("days"); days > 0 {
		options = append(options, download.WithDays(days, end))
	} else if !start.IsZero() || !end.IsZero() {
		options = append(options, download.WithInterval(start, end))
	}

	return download.NewDownloader(feed).Download(c.Context, tickers[0], c.String("output"), options...)
}
