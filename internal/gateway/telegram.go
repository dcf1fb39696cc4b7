package gateway

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/nkapoor/taskflow/internal/event"
)

// TelegramSink forwards the interesting end of the event stream (errors and
// task completions) to an ops chat. It is one subscriber among many; losing
// it never affects task execution.
type TelegramSink struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	sub    *event.Subscription
}

func NewTelegramSink(token string, chatID int64, b *event.Broadcaster) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Telegram notifier authorized on account %s", bot.Self.UserName)

	return &TelegramSink{
		bot:    bot,
		chatID: chatID,
		sub:    b.Subscribe(64),
	}, nil
}

// Start consumes events until the context is canceled. Only error and
// success logs are forwarded; per-step chatter stays on the socket stream.
func (t *TelegramSink) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			t.sub.Close()
			return
		case e, ok := <-t.sub.C:
			if !ok {
				return
			}
			logEvt, isLog := e.(event.Log)
			if !isLog || logEvt.Level == event.LevelInfo {
				continue
			}
			t.send(logEvt)
		}
	}
}

func (t *TelegramSink) send(e event.Log) {
	text := fmt.Sprintf("[%s] %s", e.Agent, e.Message)
	if e.Level == event.LevelError {
		text = "⚠️ " + text
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("telegram notify failed: %v", err)
	}
}
