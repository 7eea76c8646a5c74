package notify

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

type Telegram struct {
	bot    *bot.Bot
	chatID int64
}

// NewTelegram returns nil, nil when token or chat id is missing.
func NewTelegram(token string, chatID int64, opts ...bot.Option) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Send(ctx context.Context, title, text string) error {
	if t == nil {
		return fmt.Errorf("telegram: %w", ErrDisabled)
	}
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chatID,
		Text:   title + "\n" + text,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}
