// Package alert delivers operational notices (batch job failures) to
// a Telegram chat when one is configured. User-facing traffic never
// goes through here; that is email's job.
package alert

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/smckee/nagmail/pkg/config"
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type TelegramNotifier struct {
	b      *bot.Bot
	chatID int64
}

// NewTelegramNotifier returns nil when no token is configured, which
// callers treat as "alerts disabled".
func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	if cfg.Token == "" || cfg.ChatID == 0 {
		return nil, nil
	}
	b, err := bot.New(cfg.Token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{b: b, chatID: cfg.ChatID}, nil
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	_, err := n.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	return err
}
