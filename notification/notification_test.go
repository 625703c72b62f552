package notification

import (
	"errors"
	"net/smtp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigo-brito/signalbot/model"
	"github.com/rodrigo-brito/signalbot/strategy"
)

type notifierMock struct {
	sync.Mutex
	messages []string
}

func (n *notifierMock) Notify(text string) {
	n.Lock()
	defer n.Unlock()
	n.messages = append(n.messages, text)
}

func evaluate(t *testing.T, closes ...float64) (*model.PriceSeries, *strategy.Result) {
	t.Helper()
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{
			Time:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Open:  c,
			Close: c,
			High:  c,
			Low:   c,
		}
	}
	series, err := model.NewPriceSeries("ACME", candles)
	require.NoError(t, err)
	result, err := strategy.MovingAverageCross{Kind: strategy.KindSMA, Short: 2, Long: 3}.Evaluate(series)
	require.NoError(t, err)
	return series, result
}

func TestMessage(t *testing.T) {
	series, result := evaluate(t, 10, 11, 9, 12, 8)

	text, ok := Message(series, result, 1)
	require.True(t, ok)
	assert.Equal(t, "*ACME* sma-cross\n🟢 BUY signal on 2024-01-05 at 8.00", text)

	text, ok = Message(series, result, 2)
	require.True(t, ok)
	assert.Equal(t, "*ACME* sma-cross\n🔴 SELL signal on 2024-01-04 at 12.00\n🟢 BUY signal on 2024-01-05 at 8.00", text)

	series, result = evaluate(t, 10, 11, 9, 12, 8, 20)
	_, ok = Message(series, result, 1)
	assert.False(t, ok)
}

func TestSignalSubscriber(t *testing.T) {
	notifier := &notifierMock{}
	subscriber := NewSignalSubscriber(notifier, 0)
	assert.Equal(t, 1, subscriber.RecentBars)

	subscriber.OnResult(evaluate(t, 10, 11, 9, 12, 8))
	subscriber.OnResult(evaluate(t, 10, 11, 9, 12, 8, 20))
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "BUY")
}

func TestSignalSubscriber_SkipsRepeatedSignal(t *testing.T) {
	notifier := &notifierMock{}
	subscriber := NewSignalSubscriber(notifier, 1)

	// 相同数据重复分析只通知一次
	subscriber.OnResult(evaluate(t, 10, 11, 9, 12, 8))
	subscriber.OnResult(evaluate(t, 10, 11, 9, 12, 8))
	require.Len(t, notifier.messages, 1)

	// 新的K线带来新的信号
	subscriber.OnResult(evaluate(t, 10, 11, 9, 12, 8, 8))
	require.Len(t, notifier.messages, 2)
	assert.Contains(t, notifier.messages[1], "SELL signal on 2024-01-06")
}

func TestMail(t *testing.T) {
	mail := NewMail(MailParams{
		SMTPServerPort:    587,
		SMTPServerAddress: "smtp.example.com",
		To:                "to@example.com",
		From:              "from@example.com",
		Password:          "secret",
	})

	var (
		address string
		message string
	)
	mail.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		address = addr
		message = string(msg)
		assert.Equal(t, "from@example.com", from)
		assert.Equal(t, []string{"to@example.com"}, to)
		return nil
	}

	mail.Notify("hello")
	assert.Equal(t, "smtp.example.com:587", address)
	assert.Contains(t, message, "To: \"User\" <to@example.com>\r\n")
	assert.Contains(t, message, "\r\n\r\nhello")

	mail.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	mail.Notify("ignored")
}

func TestTelegram(t *testing.T) {
	_, err := NewTelegram("", []int64{1})
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	_, err = NewTelegram("token", nil)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)

	bot := &Telegram{last: make(map[string]string)}
	assert.Equal(t, "No signals yet.", bot.summary())

	bot.OnResult(evaluate(t, 10, 11, 9, 12, 8))
	bot.OnResult(evaluate(t, 10, 10, 10))
	assert.Equal(t, "*ACME sma-cross*: BUY signal on 2024-01-05 at 8.00\n", bot.summary())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "*a*: 1\n*b*: 2\n", Summary(map[string]string{"b": "2", "a": "1"}))
}
