package bot

import (
	"Facely/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// MessageHandler consumes text messages received by the bot.
type MessageHandler interface {
	Handle(ctx context.Context, in Incoming)
}

type TgBot struct {
	api     *tgbotapi.BotAPI
	handler MessageHandler
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewTgBot(api *tgbotapi.BotAPI, handler MessageHandler, log *slog.Logger) *TgBot {
	return &TgBot{
		api:     api,
		handler: handler,
		log:     log.With(sl.Module("tgbot"), slog.String("bot", api.Self.UserName)),
	}
}

// Start polls for updates until ctx is done, then waits for messages still being handled.
// Handlers get a context that outlives ctx so a started run finishes and cleans up.
func (t *TgBot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := t.api.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("getting updates: %w", err)
	}

	runCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.wg.Wait()
			t.log.Info("stopped receiving updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return nil
			}
			in, ok := toIncoming(update)
			if !ok {
				continue
			}

			logText := in.Text
			if len(logText) > 50 {
				logText = logText[:50] + "..."
			}
			t.log.With(
				sl.Chat(in.ChatId),
				slog.String("user", in.UserName),
				slog.String("text", logText),
			).Debug("incoming message")

			t.wg.Add(1)
			go func() {
				defer t.wg.Done()
				t.handler.Handle(runCtx, in)
			}()
		}
	}
}

func toIncoming(update tgbotapi.Update) (Incoming, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return Incoming{}, false
	}

	in := Incoming{
		ChatId:    msg.Chat.ID,
		MessageId: msg.MessageID,
		Text:      msg.Text,
	}
	if msg.From != nil {
		in.UserName = msg.From.UserName
	}
	if msg.IsCommand() {
		in.Command = strings.ToLower(msg.Command())
	}
	return in, true
}
