package notification

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
)

// Telegram 把信号发送给指定的用户，并响应 /signals 命令列出最近一次分析的信号
type Telegram struct {
	sync.Mutex
	client *tb.Bot
	users  []int64
	last   map[string]string // 股票代码 -> 最近一次的信号摘要
}

func NewTelegram(token string, users []int64) (*Telegram, error) {
	if token == "" || len(users) == 0 {
		return nil, fmt.Errorf("%w: telegram needs a token and at least one user", model.ErrInvalidParameter)
	}

	poller := &tb.LongPoller{Timeout: 10 * time.Second}
	userMiddleware := tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("no message, ", u)
			return false
		}

		for _, user := range users {
			if u.Message.Sender.ID == user {
				return true
			}
		}
		log.Error("invalid user, ", u.Message)
		return false
	})

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     token,
		Poller:    userMiddleware,
	})
	if err != nil {
		return nil, err
	}

	err = client.SetCommands([]tb.Command{
		{Text: "/signals", Description: "最近一次分析的信号"},
	})
	if err != nil {
		return nil, err
	}

	bot := &Telegram{
		client: client,
		users:  users,
		last:   make(map[string]string),
	}
	client.Handle("/signals", bot.SignalsHandle)
	return bot, nil
}

// Start 开始接收命令，不阻塞
func (t *Telegram) Start() {
	go t.client.Start()
}

func (t *Telegram) Stop() {
	t.client.Stop()
}

func (t *Telegram) Notify(text string) {
	for _, user := range t.users {
		_, err := t.client.Send(&tb.User{ID: user}, text)
		if err != nil {
			log.Error(err)
		}
	}
}

// OnResult 记录每个股票最近一次的信号，供 /signals 使用
func (t *Telegram) OnResult(series *model.PriceSeries, result *strategy.Result) {
	event, ok := result.LastEvent()
	if !ok {
		return
	}

	t.Lock()
	defer t.Unlock()
	t.last[series.Ticker()+" "+result.Strategy] = event.String()
}

func (t *Telegram) summary() string {
	t.Lock()
	defer t.Unlock()

	if len(t.last) == 0 {
		return "No signals yet."
	}
	return Summary(t.last)
}

func (t *Telegram) SignalsHandle(m *tb.Message) {
	_, err := t.client.Send(m.Sender, t.summary())
	if err != nil {
		log.Error(err)
	}
}

// Summary 按名称排序输出 key: value 列表
func Summary(values map[string]string) string {
	keys := lo.Keys(values)
	sort.Strings(keys)

	var builder strings.Builder
	for _, key := range keys {
		builder.WriteString(fmt.Sprintf("*%s*: %s\n", key, values[key]))
	}
	return builder.String()
}
