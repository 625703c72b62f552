// Package config 读取策略参数文件。所有字段都有默认值，文件中只需要写要修改的部分。
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/rodrigo-brito/signalbot/indicator"
	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/scheduler"
	"github.com/rodrigo-brito/signalbot/strategy"
	"github.com/rodrigo-brito/signalbot/tools/log"
)

// 覆盖配置文件的环境变量
const (
	EnvLogLevel      = "SIGNALBOT_LOG_LEVEL"
	EnvTelegramToken = "SIGNALBOT_TELEGRAM_TOKEN"
	EnvMailPassword  = "SIGNALBOT_MAIL_PASSWORD"
)

type MovingAverage struct {
	Short int `yaml:"short"`
	Long  int `yaml:"long"`
}

type RSI struct {
	Period     int     `yaml:"period"`
	Overbought float64 `yaml:"overbought"`
	Oversold   float64 `yaml:"oversold"`
}

type MACD struct {
	Fast       int    `yaml:"fast"`
	Slow       int    `yaml:"slow"`
	Signal     int    `yaml:"signal"`
	Reference  string `yaml:"reference"`
	ZeroFilter bool   `yaml:"zero_filter"`
	Histogram  bool   `yaml:"histogram"`
}

type Bollinger struct {
	Period int     `yaml:"period"`
	K      float64 `yaml:"k"`
}

type Strategies struct {
	EMACross  MovingAverage `yaml:"ema_cross"`
	SMACross  MovingAverage `yaml:"sma_cross"`
	RSI       RSI           `yaml:"rsi"`
	MACD      MACD          `yaml:"macd"`
	Bollinger Bollinger     `yaml:"bollinger"`
	Fibonacci MovingAverage `yaml:"fibonacci"`
}

type Telegram struct {
	Token string  `yaml:"token"`
	Users []int64 `yaml:"users"`
}

type Mail struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Password string `yaml:"password"`
}

// Notification 为空时不发送通知
type Notification struct {
	// RecentBars 只通知最后几根K线上的信号
	RecentBars int      `yaml:"recent_bars"`
	Telegram   Telegram `yaml:"telegram"`
	Mail       Mail     `yaml:"mail"`
}

// TelegramEnabled 是否配置了 Telegram
func (n Notification) TelegramEnabled() bool {
	return n.Telegram.Token != ""
}

// MailEnabled 是否配置了邮件
func (n Notification) MailEnabled() bool {
	return n.Mail.Server != ""
}

// DefaultSchedule 周一到周五 18:00
const DefaultSchedule = "0 0 18 * * 1-5"

// Config 参数文件
type Config struct {
	LogLevel string `yaml:"log_level"`
	// Window 只分析最近这段时间的数据，例如 365d、26w，为空时使用全部数据
	Window string `yaml:"window"`
	// Concurrency 批量分析时同时处理的股票数量
	Concurrency int `yaml:"concurrency"`
	// Schedule watch 命令的 cron 表达式，格式为 "秒 分 时 日 月 周"
	Schedule     string       `yaml:"schedule"`
	Strategies   Strategies   `yaml:"strategies"`
	Notification Notification `yaml:"notification"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		LogLevel:    log.InfoLevel.String(),
		Concurrency: 4,
		Schedule:    DefaultSchedule,
		Strategies: Strategies{
			EMACross: MovingAverage{Short: 20, Long: 50},
			SMACross: MovingAverage{Short: 20, Long: 50},
			RSI: RSI{
				Period:     indicator.DefaultRSIPeriod,
				Overbought: 70,
				Oversold:   30,
			},
			MACD: MACD{
				Fast:       indicator.DefaultMACDFast,
				Slow:       indicator.DefaultMACDSlow,
				Signal:     indicator.DefaultMACDSignal,
				Reference:  string(strategy.ReferenceSignal),
				ZeroFilter: true,
				Histogram:  true,
			},
			Bollinger: Bollinger{
				Period: indicator.DefaultBollingerPeriod,
				K:      indicator.DefaultBollingerK,
			},
			Fibonacci: MovingAverage{Short: 10, Long: 30},
		},
		Notification: Notification{
			RecentBars: 1,
			Mail:       Mail{Port: 587},
		},
	}
}

// Load 在默认配置上叠加 YAML 文件和环境变量，然后校验
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 用环境变量覆盖配置
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelegramToken)); v != "" {
		c.Notification.Telegram.Token = v
	}
	if v := os.Getenv(EnvMailPassword); v != "" {
		c.Notification.Mail.Password = v
	}
}

// Level 返回解析后的日志级别
func (c *Config) Level() (log.Level, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return level, fmt.Errorf("%w: log_level: %s", model.ErrInvalidParameter, err)
	}
	return level, nil
}

// Duration 返回 Window 对应的时长，为空时返回 0
func (c *Config) Duration() (time.Duration, error) {
	if c.Window == "" {
		return 0, nil
	}
	duration, err := str2duration.ParseDuration(c.Window)
	if err != nil {
		return 0, fmt.Errorf("%w: window %q: %s", model.ErrInvalidParameter, c.Window, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: window %q must be positive", model.ErrInvalidParameter, c.Window)
	}
	return duration, nil
}

// Validate 校验全部字段
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Duration(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be positive, got %d", model.ErrInvalidParameter, c.Concurrency)
	}

	if err := scheduler.Validate(c.Schedule); err != nil {
		return err
	}
	if err := c.Notification.Validate(); err != nil {
		return err
	}

	for _, name := range strategy.Names() {
		s, err := c.Strategy(name)
		if err != nil {
			return err
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("strategies.%s: %w", name, err)
		}
	}
	return nil
}

// Strategy 按名称创建策略
func (c *Config) Strategy(name string) (strategy.Strategy, error) {
	s := c.Strategies
	switch name {
	case strategy.NameEMACross:
		return &strategy.MovingAverageCross{Kind: strategy.KindEMA, Short: s.EMACross.Short, Long: s.EMACross.Long}, nil
	case strategy.NameSMACross:
		return &strategy.MovingAverageCross{Kind: strategy.KindSMA, Short: s.SMACross.Short, Long: s.SMACross.Long}, nil
	case strategy.NameRSI:
		return &strategy.RSI{Period: s.RSI.Period, Overbought: s.RSI.Overbought, Oversold: s.RSI.Oversold}, nil
	case strategy.NameMACD:
		return &strategy.MACD{
			Fast:       s.MACD.Fast,
			Slow:       s.MACD.Slow,
			Signal:     s.MACD.Signal,
			Reference:  strategy.MACDReference(s.MACD.Reference),
			ZeroFilter: s.MACD.ZeroFilter,
			Histogram:  s.MACD.Histogram,
		}, nil
	case strategy.NameBollinger:
		return &strategy.Bollinger{Period: s.Bollinger.Period, K: s.Bollinger.K}, nil
	case strategy.NameFibonacci:
		return &strategy.Fibonacci{Short: s.Fibonacci.Short, Long: s.Fibonacci.Long}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy %q, available: %v", model.ErrInvalidParameter, name,
		strategy.Names())
}

// StrategiesByName 按名称列表创建策略，列表为空时返回全部策略
func (c *Config) StrategiesByName(names ...string) ([]strategy.Strategy, error) {
	if len(names) == 0 {
		names = strategy.Names()
	}
	strategies := make([]strategy.Strategy, 0, len(names))
	for _, name := range names {
		s, err := c.Strategy(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	return strategies, nil
}

// Validate 校验通知配置
func (n Notification) Validate() error {
	if n.RecentBars < 1 {
		return fmt.Errorf("%w: notification.recent_bars must be positive, got %d", model.ErrInvalidParameter,
			n.RecentBars)
	}
	if n.TelegramEnabled() && len(n.Telegram.Users) == 0 {
		return fmt.Errorf("%w: notification.telegram.users is required", model.ErrInvalidParameter)
	}
	if n.MailEnabled() && (n.Mail.From == "" || n.Mail.To == "" || n.Mail.Port < 1) {
		return fmt.Errorf("%w: notification.mail needs from, to and port", model.ErrInvalidParameter)
	}
	return nil
}
