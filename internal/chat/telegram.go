package chat

import (
	"context"
	"errors"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"
)

// TelegramAdapter drives a Telegram bot account via long polling. Outbound
// text is rendered in Markdown mode.
type TelegramAdapter struct {
	bot *tele.Bot
}

type TelegramConfig struct {
	Token       string
	PollTimeout time.Duration
}

func NewTelegramAdapter(cfg TelegramConfig) (*TelegramAdapter, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &TelegramAdapter{bot: bot}, nil
}

func (a *TelegramAdapter) SelfIdentity(_ context.Context) (string, error) {
	// telebot resolves the bot account during NewBot; a nil Me means the
	// initial getMe call never succeeded.
	if a.bot.Me == nil {
		return "", errors.New("telegram self identity unavailable")
	}
	return strconv.FormatInt(a.bot.Me.ID, 10), nil
}

func (a *TelegramAdapter) Listen(ctx context.Context, handler func(Message)) error {
	a.bot.Handle(tele.OnText, func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}
		handler(Message{
			Sender: strconv.FormatInt(sender.ID, 10),
			Text:   c.Text(),
			Ref:    c.Message(),
		})
		return nil
	})

	go func() {
		<-ctx.Done()
		a.bot.Stop()
	}()
	a.bot.Start()
	return ctx.Err()
}

func (a *TelegramAdapter) Reply(_ context.Context, to Message, text string) (MessageRef, error) {
	msg, ok := to.Ref.(*tele.Message)
	if !ok {
		return nil, errors.New("reply target is not a telegram message")
	}
	sent, err := a.bot.Reply(msg, text, tele.ModeMarkdown)
	if err != nil {
		return nil, err
	}
	return sent, nil
}

func (a *TelegramAdapter) Edit(_ context.Context, ref MessageRef, text string) error {
	msg, ok := ref.(*tele.Message)
	if !ok {
		return errors.New("edit target is not a telegram message")
	}
	_, err := a.bot.Edit(msg, text, tele.ModeMarkdown)
	return err
}
